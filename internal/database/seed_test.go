package database

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestSeedIdempotent(t *testing.T) {
	ctx := testContext(t)
	db, err := Connect(ctx, testDSN(), DefaultPool)
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only writes when the users table is empty. Other packages may be
	// using the same database, so the demo user is only checked when this
	// run actually created it.
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var hash string
	err = db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE email = $1", SeedEmail).Scan(&hash)
	if err != nil {
		t.Skipf("demo user not present (database was not empty): %v", err)
	}
	if hash == SeedPassword {
		t.Fatal("seed password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(SeedPassword)); err != nil {
		t.Errorf("seed hash does not match seed password: %v", err)
	}

	var profiles int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM profiles p JOIN users u ON u.id = p.user_id WHERE u.email = $1", SeedEmail,
	).Scan(&profiles); err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if profiles != 1 {
		t.Errorf("expected 1 demo profile, got %d", profiles)
	}
}
