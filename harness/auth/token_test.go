package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	. "github.com/smartystreets/goconvey/convey"
)

const testSecret = "unit-test-secret"

func sign(claims jwt.MapClaims, secret string) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return signed
}

func TestInspectToken(t *testing.T) {
	Convey("InspectToken", t, func() {
		valid := sign(jwt.MapClaims{
			"sub":     "guest@example.com",
			"user_id": "u-1",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		Convey("structural decode without a secret", func() {
			info, err := InspectToken(valid, "")
			So(err, ShouldBeNil)
			So(info.Subject, ShouldEqual, "guest@example.com")
			So(info.UserID, ShouldEqual, "u-1")
			So(info.Verified, ShouldBeFalse)
			So(info.ExpiresAt.After(time.Now()), ShouldBeTrue)
		})

		Convey("verified decode with the secret", func() {
			info, err := InspectToken(valid, testSecret)
			So(err, ShouldBeNil)
			So(info.Verified, ShouldBeTrue)
		})

		Convey("wrong secret fails verification", func() {
			_, err := InspectToken(valid, "other-secret")
			So(err, ShouldNotBeNil)
		})

		Convey("missing user_id is rejected", func() {
			token := sign(jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)
			_, err := InspectToken(token, "")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "user_id")
		})

		Convey("numeric user_id is accepted", func() {
			token := sign(jwt.MapClaims{"sub": "x", "user_id": 42}, testSecret)
			info, err := InspectToken(token, "")
			So(err, ShouldBeNil)
			So(info.UserID, ShouldEqual, "42")
		})

		Convey("garbage is rejected", func() {
			_, err := InspectToken("not-a-jwt", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestForgeExpired(t *testing.T) {
	Convey("ForgeExpired", t, func() {
		claims := jwt.MapClaims{"sub": "a@example.com", "user_id": "u-9", "exp": time.Now().Add(time.Hour).Unix()}

		Convey("produces a token that fails only on expiry", func() {
			forged, err := ForgeExpired(claims, testSecret)
			So(err, ShouldBeNil)

			info, err := InspectToken(forged, testSecret)
			So(err, ShouldNotBeNil)
			So(IsExpiredError(err), ShouldBeTrue)
			So(info.UserID, ShouldEqual, "u-9")
			So(info.ExpiresAt.Before(time.Now()), ShouldBeTrue)
		})

		Convey("does not mutate the input claims", func() {
			before := claims["exp"]
			_, err := ForgeExpired(claims, testSecret)
			So(err, ShouldBeNil)
			So(claims["exp"], ShouldEqual, before)
		})

		Convey("requires the secret", func() {
			_, err := ForgeExpired(claims, "")
			So(err, ShouldNotBeNil)
		})
	})
}
