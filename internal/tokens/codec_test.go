package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/news_website/internal/models"
)

var testSecret = []byte("test-jwt-secret-test-jwt-secret-0123456789")

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newTestCodec() (*Codec, *clock) {
	clk := &clock{t: time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)}
	codec := NewCodec(testSecret)
	codec.Now = clk.Now
	return codec, clk
}

func TestCodec_AccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, role := range models.Roles() {
		role := role
		t.Run(string(role), func(t *testing.T) {
			t.Parallel()

			codec, clk := newTestCodec()
			token, exp, err := codec.IssueAccessToken("g-100", role)
			require.NoError(t, err)
			require.NotEmpty(t, token)
			assert.Equal(t, clk.t.Add(AccessTTL), exp)

			p, err := codec.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, "g-100", p.Subject)
			assert.Equal(t, role, p.Role)
		})
	}
}

func TestCodec_AccessToken_ClaimSet(t *testing.T) {
	t.Parallel()

	codec, clk := newTestCodec()
	token, _, err := codec.IssueAccessToken("g-1", models.RoleAdmin)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Len(t, claims, 4)
	assert.Equal(t, "g-1", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
	assert.EqualValues(t, clk.t.Unix(), claims["iat"])
	assert.EqualValues(t, clk.t.Add(time.Hour).Unix(), claims["exp"])
}

func TestCodec_AccessToken_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	codec, clk := newTestCodec()
	token, _, err := codec.IssueAccessToken("g-100", models.RoleUser)
	require.NoError(t, err)

	clk.t = clk.t.Add(AccessTTL - time.Second)
	_, err = codec.Verify(token)
	require.NoError(t, err)

	clk.t = clk.t.Add(2 * time.Second)
	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, "expired", Reason(err))
}

func TestCodec_Verify_InvalidSignature(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec()
	other := NewCodec([]byte("another-secret-another-secret-0123456789"))
	other.Now = codec.Now

	token, _, err := other.IssueAccessToken("g-100", models.RoleAdmin)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Verify_TamperedPayload(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec()
	userToken, _, err := codec.IssueAccessToken("g-100", models.RoleUser)
	require.NoError(t, err)
	adminToken, _, err := codec.IssueAccessToken("g-100", models.RoleAdmin)
	require.NoError(t, err)

	u := strings.Split(userToken, ".")
	a := strings.Split(adminToken, ".")
	forged := strings.Join([]string{u[0], a[1], u[2]}, ".")

	_, err = codec.Verify(forged)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Verify_Malformed(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec()
	for _, in := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := codec.Verify(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestCodec_Verify_RejectsOtherAlgorithm(t *testing.T) {
	t.Parallel()

	codec, clk := newTestCodec()
	claims := AccessClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "g-1",
			IssuedAt:  jwt.NewNumericDate(clk.t),
			ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Verify_UnknownRole(t *testing.T) {
	t.Parallel()

	codec, clk := newTestCodec()
	claims := AccessClaims{
		Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "g-1",
			IssuedAt:  jwt.NewNumericDate(clk.t),
			ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCodec_RefreshSecret(t *testing.T) {
	t.Parallel()

	codec, clk := newTestCodec()
	first, exp, err := codec.IssueRefreshSecret("g-100")
	require.NoError(t, err)
	assert.Equal(t, clk.t.Add(RefreshTTL), exp)

	second, _, err := codec.IssueRefreshSecret("g-100")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = codec.Verify(first)
	require.Error(t, err, "refresh secret must not authenticate requests")
	assert.ErrorIs(t, err, ErrMalformed)
}
