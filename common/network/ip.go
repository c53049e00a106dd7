package network

import (
	"net"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/agentsim/simcheck/common/logger"
)

func splitSubnets(subnets string) []string {
	var res []string
	for _, s := range strings.Split(subnets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// IsValidSubnets checks a comma-separated CIDR list.
func IsValidSubnets(subnets string) error {
	for _, subnet := range splitSubnets(subnets) {
		if _, _, err := net.ParseCIDR(subnet); err != nil {
			return errors.Wrapf(err, "invalid subnet in list: %s", subnet)
		}
	}
	return nil
}

// IsIpInSubnets reports whether ip falls inside any subnet of the list.
// An empty list admits every address.
func IsIpInSubnets(ip string, subnets string) bool {
	list := splitSubnets(subnets)
	if len(list) == 0 {
		return true
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, subnet := range list {
		_, ipNet, err := net.ParseCIDR(subnet)
		if err != nil {
			logger.Logger.Error("failed to parse subnet", zap.String("subnet", subnet), zap.Error(err))
			continue
		}
		if ipNet.Contains(parsed) {
			return true
		}
	}
	return false
}
