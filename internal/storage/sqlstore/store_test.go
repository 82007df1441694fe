package sqlstore

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{name: "sqlite unchanged", dialect: SQLite, query: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = ? AND b = ?"},
		{name: "postgres numbered", dialect: Postgres, query: "SELECT * FROM t WHERE a = ? AND b = ?", want: "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{name: "postgres no params", dialect: Postgres, query: "SELECT 1", want: "SELECT 1"},
		{name: "postgres many", dialect: Postgres, query: "VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", want: "VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.dialect)
			if got := s.rebind(tt.query); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataMethodsBeforeBind(t *testing.T) {
	s := New(SQLite)
	if _, err := s.ListHabits(t.Context()); err == nil {
		t.Error("expected error before Bind")
	}
	if err := s.DeleteCompletion(t.Context(), "h", "2024-01-01"); err == nil {
		t.Error("expected error before Bind")
	}
}
