package repositories

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

// Dimension is a lookup table keyed by a unique name column.
type Dimension struct {
	gateway *Gateway
	table   string
	columns []string
}

func NewDimension(gateway *Gateway, table string, extraColumns ...string) *Dimension {
	return &Dimension{gateway: gateway, table: table, columns: append([]string{"name"}, extraColumns...)}
}

func NewSkillsRepository(gateway *Gateway) *Dimension {
	return NewDimension(gateway, "keyskill")
}

func NewCitiesRepository(gateway *Gateway) *Dimension {
	return NewDimension(gateway, "city")
}

func NewEmployersRepository(gateway *Gateway) *Dimension {
	return NewDimension(gateway, "employer", "url")
}

func (d *Dimension) Table() string {
	return d.table
}

func (d *Dimension) FindID(ctx context.Context, name string) (int64, bool, error) {
	result, err := d.gateway.Execute(ctx, NewStatement("SELECT id FROM "+d.table+" WHERE name = ?", name))
	if err != nil || result.Empty() {
		return 0, false, err
	}

	id, err := result.Rows[0].Int64("id")
	return id, err == nil, err
}

// Insert adds a row; values follow the column order name, then the extra columns.
func (d *Dimension) Insert(ctx context.Context, name string, extra ...any) error {
	if len(extra) != len(d.columns)-1 {
		return fmt.Errorf("%s expects %d extra values, got %d", d.table, len(d.columns)-1, len(extra))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(d.columns)), ", ")
	sql := "INSERT INTO " + d.table + " (" + strings.Join(d.columns, ", ") + ") VALUES (" + placeholders + ")"

	_, err := d.gateway.Execute(ctx, NewStatement(sql, append([]any{name}, extra...)...))
	return err
}

// Ensure looks the name up and inserts it when absent. A concurrent insert of the
// same name surfaces as ErrDuplicate and is resolved by the second lookup.
func (d *Dimension) Ensure(ctx context.Context, name string, extra ...any) (id int64, inserted bool, err error) {
	id, found, err := d.FindID(ctx, name)
	if err != nil || found {
		return id, false, err
	}

	err = d.Insert(ctx, name, extra...)
	if err != nil && !errors.Is(err, ErrDuplicate) {
		return 0, false, err
	}
	inserted = err == nil

	id, found, err = d.FindID(ctx, name)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, fmt.Errorf("%s %q is missing right after insert", d.table, name)
	}
	return id, inserted, nil
}
