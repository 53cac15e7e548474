package repositories

import (
	"context"
	"fmt"
	"github.com/maxaizer/hh-ingest/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"regexp"
	"strconv"
	"strings"
)

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

var readStatement = regexp.MustCompile(`(?i)^\s*select\b`)

// Statement is a single SQL statement with "?" placeholders and its bound values.
type Statement struct {
	SQL  string
	Args []any
}

func NewStatement(sql string, args ...any) Statement {
	return Statement{SQL: sql, Args: args}
}

func (s Statement) IsRead() bool {
	return readStatement.MatchString(s.SQL)
}

type Row map[string]any

// Int64 reads an integer column regardless of how the driver typed it.
func (r Row) Int64(column string) (int64, error) {
	switch v := r[column].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	case nil:
		return 0, fmt.Errorf("column %q is null or missing", column)
	default:
		return 0, fmt.Errorf("column %q has unexpected type %T", column, v)
	}
}

// Result holds fetched rows for reads and the affected row count for writes.
type Result struct {
	Rows         []Row
	RowsAffected int64
}

func (r Result) Empty() bool {
	return len(r.Rows) == 0
}

// Gateway executes one parametrized statement per call. No transaction spans
// calls, so every statement commits on its own.
type Gateway struct {
	db *gorm.DB
}

func NewGateway(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) Execute(ctx context.Context, statement Statement) (Result, error) {
	session := g.db.WithContext(ctx)

	if statement.IsRead() {
		var rows []map[string]any
		if err := session.Raw(statement.SQL, statement.Args...).Scan(&rows).Error; err != nil {
			return Result{}, g.fail(statement, err)
		}

		result := Result{Rows: make([]Row, 0, len(rows))}
		for _, row := range rows {
			result.Rows = append(result.Rows, row)
		}
		return result, nil
	}

	tx := session.Exec(statement.SQL, statement.Args...)
	if tx.Error != nil {
		return Result{}, g.fail(statement, tx.Error)
	}
	return Result{RowsAffected: tx.RowsAffected}, nil
}

func (g *Gateway) fail(statement Statement, err error) error {
	if isDuplicate(err) {
		log.Debugf("duplicate key on %q: %v", statement.SQL, err)
		return errors.Wrap(ErrDuplicate, err.Error())
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("statement %q failed: %v", statement.SQL, err)
	return errors.Wrapf(err, "execute %q", statement.SQL)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
