package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
)

// clauseBuilder accumulates WHERE clauses with numbered placeholders.
type clauseBuilder struct {
	clauses []string
	args    []any
	idx     int
}

func newClauseBuilder(startIndex int) *clauseBuilder {
	return &clauseBuilder{idx: startIndex}
}

func (b *clauseBuilder) add(format string, arg any) {
	b.clauses = append(b.clauses, fmt.Sprintf(format, b.idx))
	b.args = append(b.args, arg)
	b.idx++
}

func (b *clauseBuilder) addIn(column string, values []int64) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = fmt.Sprintf("$%d", b.idx)
		b.args = append(b.args, v)
		b.idx++
	}
	b.clauses = append(b.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
}

// where renders the accumulated clauses, or "" when there are none.
func (b *clauseBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// and renders the accumulated clauses as a continuation of an existing WHERE.
func (b *clauseBuilder) and() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(b.clauses, " AND ")
}

// buildCampaignFilterClause constructs the filter for history and calendar queries
func buildCampaignFilterClause(filter domain.CampaignFilter, alias string, startIndex int) *clauseBuilder {
	b := newClauseBuilder(startIndex)

	if region := strings.TrimSpace(filter.Region); region != "" {
		b.add(alias+"region = $%d", region)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		b.add(alias+"category = $%d", category)
	}
	if productCode := strings.TrimSpace(filter.ProductCode); productCode != "" {
		b.add("CAST("+alias+"product_code AS TEXT) = $%d", productCode)
	}
	b.addIn(alias+"store_code", filter.StoreIDs)
	if filter.DateFrom != "" {
		b.add(alias+"event_date >= $%d", filter.DateFrom)
	}
	if filter.DateTo != "" {
		b.add(alias+"event_date <= $%d", filter.DateTo)
	}

	return b
}

// buildCatalogFilterClause constructs the store filter for catalog queries
func buildCatalogFilterClause(filter domain.CatalogFilter, alias string, startIndex int) *clauseBuilder {
	b := newClauseBuilder(startIndex)

	if region := strings.TrimSpace(filter.Region); region != "" {
		b.add(alias+"region = $%d", region)
	}
	b.addIn(alias+"code", filter.StoreIDs)

	return b
}
