package auth

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-32b"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	svc, err := NewTokenService(testSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService(t)
	id := &Identity{
		ID:             "usr-001",
		Role:           RoleManager,
		OrganizationID: "org-001",
		ManagedUserIDs: []string{"u1", "u2"},
	}

	token, err := svc.Issue(id)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	got, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got.ID != id.ID || got.Role != id.Role {
		t.Errorf("Verify() = {%s %s}, want {%s %s}", got.ID, got.Role, id.ID, id.Role)
	}
	if got.OrganizationID != "org-001" {
		t.Errorf("OrganizationID = %q, want %q", got.OrganizationID, "org-001")
	}
	if !slices.Equal(got.ManagedUserIDs, []string{"u1", "u2"}) {
		t.Errorf("ManagedUserIDs = %v, want [u1 u2]", got.ManagedUserIDs)
	}
}

func TestTokenService_ClaimsShape(t *testing.T) {
	svc := newTestTokenService(t)
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(&Identity{ID: "usr-001", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims := &CustomClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("exp - iat = %v, want 1h", got)
	}
}

func TestTokenService_UniqueTokenIDs(t *testing.T) {
	svc := newTestTokenService(t)
	id := &Identity{ID: "usr-001", Role: RoleUser}

	a, _ := svc.Issue(id) //nolint:errcheck // compared below
	b, _ := svc.Issue(id) //nolint:errcheck // compared below
	if a == b {
		t.Error("two issued tokens should differ by jti")
	}
}

func TestTokenService_VerifyFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestTokenService(t)
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	valid, err := svc.Issue(&Identity{ID: "usr-001", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other, err := NewTokenService("another-secret-key-for-jwt-signing", 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	other.now = svc.now
	foreign, err := other.Issue(&Identity{ID: "usr-001", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	unknownRole := signRaw(t, jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-001",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
		Role: "Superuser",
	})
	noSubject := signRaw(t, jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
		Role: RoleUser,
	})
	noExpiry := signRaw(t, jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "usr-001"},
		Role:             RoleUser,
	})
	wrongAlg := signRaw(t, jwt.SigningMethodHS512, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-001",
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
		},
		Role: RoleUser,
	})

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{"foreign secret", foreign, issued},
		{"expired", valid, issued.Add(time.Hour + time.Second)},
		{"malformed", "not-a-valid-jwt", issued},
		{"empty", "", issued},
		{"tampered payload", tamper(valid), issued},
		{"unknown role", unknownRole, issued},
		{"missing subject", noSubject, issued},
		{"missing expiry", noExpiry, issued},
		{"wrong algorithm", wrongAlg, issued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.now = func() time.Time { return tt.at }

			id, err := svc.Verify(tt.token)
			if id != nil {
				t.Errorf("Verify() identity = %+v, want nil", id)
			}
			if err != ErrInvalidToken { //nolint:errorlint // must be the bare sentinel
				t.Errorf("Verify() error = %v, want bare ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenService_ValidJustBeforeExpiry(t *testing.T) {
	svc := newTestTokenService(t)
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue(&Identity{ID: "usr-001", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := svc.Verify(token); err != nil {
		t.Errorf("Verify() before expiry error = %v", err)
	}
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("NewTokenService(\"\") error = %v, want ErrMissingSecret", err)
	}
}

func TestTokenService_IssueWithoutSubject(t *testing.T) {
	svc := newTestTokenService(t)

	for _, id := range []*Identity{nil, {Role: RoleUser}} {
		if _, err := svc.Issue(id); !errors.Is(err, ErrTokenIssuance) {
			t.Errorf("Issue(%+v) error = %v, want ErrTokenIssuance", id, err)
		}
	}
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
		wantOk bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseBearer(tt.header)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ParseBearer(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := t.Context()
	if got := IdentityFromContext(ctx); got != nil {
		t.Errorf("IdentityFromContext(empty) = %+v, want nil", got)
	}

	id := &Identity{ID: "usr-001", Role: RoleAdmin}
	if got := IdentityFromContext(WithIdentity(ctx, id)); got != id {
		t.Errorf("IdentityFromContext() = %+v, want %+v", got, id)
	}
}

func signRaw(t *testing.T, method jwt.SigningMethod, claims CustomClaims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing raw token: %v", err)
	}
	return s
}

// tamper flips a character in the payload segment, keeping the signature.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'a' {
		payload[0] = 'b'
	} else {
		payload[0] = 'a'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}
