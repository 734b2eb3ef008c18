package app

import (
	"context"

	"corbit/cmd/identity"
	"corbit/cmd/internal/catalog"
	"corbit/cmd/security/password"
)

// seedDemo loads the demo fixtures: two users with password "123456" plus
// the sample senders, groups, and packages the mobile app expects on a
// fresh install.
func seedDemo(ctx context.Context, users identity.Store, cat *catalog.MemoryStore, pwd password.Config, log Logger) error {
	hash, err := pwd.Hash("123456")
	if err != nil {
		return err
	}

	demo := []identity.CreateUserInput{
		{
			Name:             "Ahmed Mohammed",
			Username:         "admin",
			Email:            "admin@corbit.example",
			Phone:            "0501234567",
			PasswordHash:     hash,
			Balance:          5000,
			AccountType:      identity.AccountPremium,
			TwoFactorEnabled: true,
		},
		{
			Name:         "Mohammed Ali",
			Username:     "user1",
			Email:        "user1@corbit.example",
			Phone:        "0559876543",
			PasswordHash: hash,
			Balance:      1000,
			AccountType:  identity.AccountBasic,
		},
	}

	for _, in := range demo {
		if _, err := users.Create(ctx, in); err != nil {
			// Re-seeding an existing store is fine; skip the duplicates.
			if identity.IsConflict(err) {
				continue
			}
			return err
		}
	}

	catalog.SeedDemoData(cat)

	log.Info("seed.demo.loaded", "users", len(demo))
	return nil
}
