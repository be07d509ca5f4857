package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wiibec/donations-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestDonationsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_donations.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS donations",
		"CHECK (amount > 0)",
		"CREATE UNIQUE INDEX donations_stripe_session_id_key",
		"DROP TABLE IF EXISTS donations",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInvoicesMigrationEnforcesOneInvoicePerDonation(t *testing.T) {
	content := readMigration(t, "*_create_invoices.sql")

	checks := []string{
		"CONSTRAINT invoices_donation_id_key UNIQUE (donation_id)",
		"invoice_number TEXT NOT NULL UNIQUE",
		"CREATE TABLE IF NOT EXISTS invoice_sequences",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSettingsMigrationSeedsSingletons(t *testing.T) {
	content := readMigration(t, "*_create_settings.sql")

	checks := []string{
		"CHECK (id = 1)",
		"INSERT INTO page_settings",
		"ON CONFLICT (page_key) DO NOTHING",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
