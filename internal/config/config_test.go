package config

import "testing"

func TestValidateRequiresDSN(t *testing.T) {
	c := Config{Listen: ListenConfig{Address: "127.0.0.1:9000"}}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate should reject an empty db.dsn")
	}
}

func TestValidateRequiresListenAddress(t *testing.T) {
	c := Config{DB: DatabaseConfig{DSN: "core.db"}}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate should reject an empty listen.address")
	}
}

func TestValidateRejectsPartialTLS(t *testing.T) {
	c := Config{
		DB:     DatabaseConfig{DSN: "core.db"},
		Listen: ListenConfig{Address: "127.0.0.1:9000", CertPath: "cert.pem"},
	}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate should reject a cert without a matching key")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	c := Config{
		DB:     DatabaseConfig{DSN: "core.db"},
		Listen: ListenConfig{Address: "127.0.0.1:9000"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestUseTLSRequiresBoth(t *testing.T) {
	l := ListenConfig{CertPath: "cert.pem"}
	if l.UseTLS() {
		t.Fatal("UseTLS should require both cert and key")
	}
	l.KeyPath = "key.pem"
	if !l.UseTLS() {
		t.Fatal("UseTLS should report true once both are set")
	}
}
