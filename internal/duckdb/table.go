package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/inodb/vibe-nearest/internal/feature"
)

// Table is a feature table in a Store. It implements proximity.FeatureStore
// and proximity.ChromSizer.
type Table struct {
	store *Store
	name  string
	kind  TableKind

	selectSQL string
}

func newTable(s *Store, name string, kind TableKind) *Table {
	cols := []string{"chrom", kind.startCol(), kind.endCol(), "name", "strand"}
	cols = append(cols, kind.attrCols()...)
	return &Table{
		store: s,
		name:  name,
		kind:  kind,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s WHERE chrom = ? AND %s <= ? AND %s >= ?",
			strings.Join(cols, ", "), name, kind.startCol(), kind.endCol()),
	}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Kind returns the table's column layout.
func (t *Table) Kind() TableKind { return t.kind }

// Insert batch-inserts features using the Appender API. Each row's bin is
// computed with binning.Assign; features too wide to bin get a NULL bin and
// are matched by every bin-filtered query.
func (t *Table) Insert(ctx context.Context, feats []*feature.Feature) error {
	if len(feats) == 0 {
		return nil
	}
	for _, f := range feats {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("insert %s: %w", f, err)
		}
		if f.End > binning.MaxCoord {
			return fmt.Errorf("insert %s: %w", f, binning.ErrUnsupportedRange)
		}
	}

	conn, err := t.store.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", t.name)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	attrs := t.kind.attrCols()
	row := make([]driver.Value, 0, 6+len(attrs))
	for _, f := range feats {
		var bin driver.Value
		if b, err := binning.Assign(f.Start, f.End); err == nil {
			bin = uint32(b)
		}
		row = append(row[:0], f.Chrom, f.Start, f.End, bin, f.Name, f.Strand.String())
		for _, c := range attrs {
			row = append(row, f.Attr(c))
		}
		if err := appender.AppendRow(row...); err != nil {
			return fmt.Errorf("append feature %s: %w", f, err)
		}
	}

	return appender.Flush()
}

// Fetch returns features on chrom passing the inclusive overlap test against
// [start, end), ordered by start. A nil bins applies no bin filter; rows
// with a NULL bin always pass the filter.
func (t *Table) Fetch(ctx context.Context, chrom string, bins *binning.BinSet, start, end uint64) ([]*feature.Feature, error) {
	query := t.selectSQL
	switch {
	case bins == nil:
	case bins.Len() == 0:
		query += " AND bin IS NULL"
	default:
		// bin IDs are integers, safe to inline
		query += " AND (bin IS NULL OR bin IN (" + bins.String() + "))"
	}
	query += fmt.Sprintf(" ORDER BY %s, %s", t.kind.startCol(), t.kind.endCol())

	rows, err := t.store.db.QueryContext(ctx, query, chrom, end, start)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	return t.scanFeatures(rows)
}

func (t *Table) scanFeatures(rows *sql.Rows) ([]*feature.Feature, error) {
	attrs := t.kind.attrCols()
	var feats []*feature.Feature
	for rows.Next() {
		var f feature.Feature
		var name, strand sql.NullString
		vals := make([]sql.NullString, len(attrs))

		dest := []any{&f.Chrom, &f.Start, &f.End, &name, &strand}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}

		f.Name = name.String
		f.Strand = feature.ParseStrand(strand.String)
		for i, c := range attrs {
			if vals[i].Valid {
				f.SetAttr(c, vals[i].String)
			}
		}
		feats = append(feats, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return feats, nil
}

// Count returns the number of rows in the table.
func (t *Table) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.store.db.QueryRowContext(ctx, "SELECT count(*) FROM "+t.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

// ChromSize returns the chromosome length recorded in the owning store.
func (t *Table) ChromSize(chrom string) (uint64, bool) {
	return t.store.ChromSize(chrom)
}
