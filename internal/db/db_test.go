package db

import "testing"

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: "", want: "postgres"},
		{driver: "postgres", want: "postgres"},
		{driver: "PostgreSQL", want: "postgres"},
		{driver: "mysql", want: "mysql"},
		{driver: "sqlite", want: "sqlite"},
		{driver: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			dialector, err := dialectorFor(tt.driver, "dsn")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("dialectorFor(%q) expected error", tt.driver)
				}
				return
			}
			if err != nil {
				t.Fatalf("dialectorFor(%q) error: %v", tt.driver, err)
			}
			if dialector.Name() != tt.want {
				t.Errorf("dialector = %s, want %s", dialector.Name(), tt.want)
			}
		})
	}
}

func TestOpenSQLiteMigrates(t *testing.T) {
	database, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	for _, table := range []string{"clients", "treatment_methods", "treatments", "invoices", "invoice_lines", "invoice_sequences", "generation_runs", "settings"} {
		if !database.Migrator().HasTable(table) {
			t.Errorf("table %s was not migrated", table)
		}
	}
}
