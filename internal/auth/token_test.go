package auth_test

import (
	"time"

	"github.com/frahmantamala/elementar/internal"
	"github.com/frahmantamala/elementar/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	accessSecret  = "access-secret-access-secret-access-secret"
	refreshSecret = "refresh-secret-refresh-secret-refresh-secret"
)

var _ = Describe("JWTTokenGenerator", func() {
	var gen *auth.JWTTokenGenerator

	BeforeEach(func() {
		gen = auth.NewJWTTokenGenerator(accessSecret, refreshSecret, time.Minute, time.Hour)
	})

	It("verifies an access token it issued", func() {
		token, err := gen.GenerateAccessToken(42, "a@b.test")
		Expect(err).NotTo(HaveOccurred())

		id, err := gen.Verify(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(int64(42)))
	})

	It("rejects an empty token as missing", func() {
		_, err := gen.Verify("")
		Expect(err).To(MatchError(internal.ErrMissingToken))
	})

	It("rejects garbage", func() {
		_, err := gen.Verify("not.a.jwt")
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("rejects a refresh token presented as an access token", func() {
		token, err := gen.GenerateRefreshToken(42, "a@b.test")
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.Verify(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("rejects an access token presented as a refresh token", func() {
		token, err := gen.GenerateAccessToken(42, "a@b.test")
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateRefreshToken(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("rejects a token signed with another secret", func() {
		other := auth.NewJWTTokenGenerator("another-secret-another-secret-another", refreshSecret, time.Minute, time.Hour)
		token, err := other.GenerateAccessToken(42, "a@b.test")
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.Verify(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("reports expiry separately", func() {
		claims := &auth.Claims{
			UserID:    "42",
			TokenType: auth.TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				Subject:   "42",
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(accessSecret))
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.Verify(token)
		Expect(err).To(MatchError(internal.ErrTokenExpired))
	})

	It("rejects tokens without an expiry", func() {
		claims := &auth.Claims{UserID: "42", TokenType: auth.TokenTypeAccess}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(accessSecret))
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.Verify(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("rejects a non-numeric subject", func() {
		claims := &auth.Claims{
			UserID:    "abc",
			TokenType: auth.TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(accessSecret))
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.Verify(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("generates distinct random tokens", func() {
		a, err := auth.GenerateRandomToken()
		Expect(err).NotTo(HaveOccurred())
		b, err := auth.GenerateRandomToken()
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(HaveLen(64))
		Expect(a).NotTo(Equal(b))
	})
})
