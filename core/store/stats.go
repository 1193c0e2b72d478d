package store

import "context"

// Stats aggregates row counts for the admin overview.
type Stats struct {
	Users    int64 `db:"users"`
	Contents int64 `db:"contents"`
	Grants   int64 `db:"grants"`
}

// Stats counts users, content items, and access grants in one round trip.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	query := "SELECT " +
		"(SELECT COUNT(*) FROM " + usersTable + ") AS users, " +
		"(SELECT COUNT(*) FROM " + contentsTable + ") AS contents, " +
		"(SELECT COUNT(*) FROM " + grantsTable + ") AS grants"

	var st Stats
	if err := s.db.GetContext(ctx, &st, query); err != nil {
		return Stats{}, err
	}
	return st, nil
}
