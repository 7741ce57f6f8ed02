package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/nerrad567/taskhub-core/internal/infrastructure/database"
	"github.com/nerrad567/taskhub-core/internal/organization"
)

// seedPasswordBytes is the number of random bytes for the seed admin password.
const seedPasswordBytes = 16

// SeedOptions names the first-boot accounts.
type SeedOptions struct {
	AdminUsername    string
	OrganizationName string
}

// SeedAdmin creates a default organization and an Admin inside it on first
// boot, when no users exist. Both rows are written in one transaction. The
// generated password is logged once and returned; it is empty when seeding
// was skipped.
func SeedAdmin(ctx context.Context, db database.Executor, hasher *Hasher,
	opts SeedOptions, logger *slog.Logger) (string, error) {
	count, err := NewUserRepository(db).Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		logger.Info("users exist, skipping admin seed")
		return "", nil
	}

	if opts.AdminUsername == "" {
		opts.AdminUsername = "admin"
	}
	orgName, err := organization.NormaliseName(opts.OrganizationName)
	if err != nil {
		orgName = "Default Organization"
	}

	passwordBytes := make([]byte, seedPasswordBytes)
	if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return "", fmt.Errorf("generating seed password: %w", err)
	}
	password := hex.EncodeToString(passwordBytes)

	hash, err := hasher.Hash(ctx, password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	org := &organization.Organization{Name: orgName}
	admin := &User{
		Username:     opts.AdminUsername,
		PasswordHash: hash,
		Role:         RoleAdmin,
	}
	seeded := false
	err = database.InTx(ctx, db, func(tx database.Executor) error {
		users := NewUserRepository(tx)
		// Another instance may have seeded while we were hashing.
		n, err := users.Count(ctx)
		if err != nil {
			return fmt.Errorf("checking user count: %w", err)
		}
		if n > 0 {
			return nil
		}

		if err := organization.NewRepository(tx).Create(ctx, org); err != nil {
			return fmt.Errorf("creating seed organization: %w", err)
		}
		admin.OrganizationID = org.ID
		if err := users.Create(ctx, admin); err != nil {
			return fmt.Errorf("creating seed admin: %w", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return "", err
	}
	if !seeded {
		logger.Info("users exist, skipping admin seed")
		return "", nil
	}

	logger.Warn("seed admin account created",
		"username", admin.Username,
		"password", password,
		"organization_id", org.ID,
		"action_required", "change this password immediately",
	)

	return password, nil
}
