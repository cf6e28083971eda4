package duckdb

import (
	"fmt"
	"regexp"
	"strings"
)

// TableKind selects the column layout of a feature table. The kind is fixed
// when the table is created.
type TableKind int8

const (
	// KindFeature is a generic BED-like table with chromStart/chromEnd.
	KindFeature TableKind = iota
	// KindGene is a gene prediction table with txStart/txEnd and a gene symbol in name2.
	KindGene
	// KindSNP is a dbSNP-style table carrying refNCBI and observed alleles.
	KindSNP
)

// ParseTableKind converts "feature", "gene" or "snp" to a TableKind.
func ParseTableKind(s string) (TableKind, error) {
	switch strings.ToLower(s) {
	case "feature", "bed", "":
		return KindFeature, nil
	case "gene", "genepred":
		return KindGene, nil
	case "snp":
		return KindSNP, nil
	}
	return KindFeature, fmt.Errorf("unknown table kind %q", s)
}

func (k TableKind) String() string {
	switch k {
	case KindFeature:
		return "feature"
	case KindGene:
		return "gene"
	case KindSNP:
		return "snp"
	}
	return fmt.Sprintf("TableKind(%d)", int8(k))
}

func (k TableKind) valid() bool {
	return k >= KindFeature && k <= KindSNP
}

// startCol and endCol name the coordinate columns.
func (k TableKind) startCol() string {
	if k == KindGene {
		return "txStart"
	}
	return "chromStart"
}

func (k TableKind) endCol() string {
	if k == KindGene {
		return "txEnd"
	}
	return "chromEnd"
}

// attrCols lists the kind-specific columns, stored as feature attributes.
func (k TableKind) attrCols() []string {
	switch k {
	case KindGene:
		return []string{"name2"}
	case KindSNP:
		return []string{"refNCBI", "observed"}
	}
	return nil
}

func (k TableKind) ddl(table string) []string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	fmt.Fprintf(&b, "\tchrom VARCHAR NOT NULL,\n")
	fmt.Fprintf(&b, "\t%s UBIGINT NOT NULL,\n", k.startCol())
	fmt.Fprintf(&b, "\t%s UBIGINT NOT NULL,\n", k.endCol())
	fmt.Fprintf(&b, "\tbin UINTEGER,\n")
	fmt.Fprintf(&b, "\tname VARCHAR,\n")
	fmt.Fprintf(&b, "\tstrand VARCHAR")
	for _, c := range k.attrCols() {
		fmt.Fprintf(&b, ",\n\t%s VARCHAR", c)
	}
	b.WriteString("\n)")

	return []string{
		b.String(),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_chrom_bin ON %s (chrom, bin)", table, table),
	}
}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// checkIdent rejects table names that cannot be used unquoted in SQL.
func checkIdent(name string) error {
	if !identRE.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}
