package fbref

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/chili-guy/BOT-ESTAT-BETS/internal/logger"
	_ "modernc.org/sqlite"
)

var db *sql.DB

// sqliteTimeLayout is how time.Time columns are stored in the archive
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Persistable interface defines methods that archived objects must implement
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
	BeforeSave() error
}

// GetDB returns the archive database connection, opening it on first use
func GetDB() (*sql.DB, error) {
	if db == nil {
		var err error
		db, err = sql.Open("sqlite", Config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err = db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Archive database initialized", Config.DBPath)
	}
	return db, nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// CreateTable creates the table for the given persistable object using
// its column/dbtype/primary/index struct tags
func CreateTable(obj Persistable) error {
	d, err := GetDB()
	if err != nil {
		return err
	}

	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)
	logger.Debug("Creating table with SQL", createSQL)

	if _, err = d.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := d.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var columns []string
	var primaryKeys []string

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() {
			continue
		}

		dbType := field.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}

		columnName := field.Tag.Get("column")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}

		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, columnName)
		}

		columns = append(columns, fmt.Sprintf("%s %s", columnName, dbType))
	}

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var indexSQL []string
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if field.Tag.Get("index") == "" {
			continue
		}
		columnName := field.Tag.Get("column")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}
		indexName := fmt.Sprintf("idx_%s_%s", tableName, columnName)
		indexSQL = append(indexSQL,
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, columnName))
	}
	return indexSQL
}

// Save upserts the object. A record re-scraped in a later run replaces
// the earlier one, which gives the archive the same keep-last semantics
// as the in-memory deduplication.
func Save(obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	d, err := GetDB()
	if err != nil {
		return err
	}

	columns, placeholders, values := getInsertData(obj)
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		obj.GetTableName(),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "))

	if _, err = d.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to save to %s: %w", obj.GetTableName(), err)
	}
	return nil
}

// BulkSave upserts many objects inside a single transaction
func BulkSave(objects []Persistable) error {
	if len(objects) == 0 {
		return nil
	}

	d, err := GetDB()
	if err != nil {
		return err
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, obj := range objects {
		if err := obj.BeforeSave(); err != nil {
			tx.Rollback()
			return fmt.Errorf("before save hook failed: %w", err)
		}
		columns, placeholders, values := getInsertData(obj)
		query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
			obj.GetTableName(),
			strings.Join(columns, ", "),
			strings.Join(placeholders, ", "))
		if _, err := tx.Exec(query, values...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save to %s: %w", obj.GetTableName(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Info("Archived", len(objects), "records to", objects[0].GetTableName())
	return nil
}

// getInsertData extracts column names, placeholders and values via the
// struct tags. time.Time fields are stored as text in a fixed layout.
func getInsertData(obj any) ([]string, []string, []any) {
	objType := reflect.TypeOf(obj)
	objValue := reflect.ValueOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
		objValue = objValue.Elem()
	}

	var columns []string
	var placeholders []string
	var values []any

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}

		columnName := field.Tag.Get("column")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}

		value := objValue.Field(i).Interface()
		if t, ok := value.(time.Time); ok {
			value = t.Format(sqliteTimeLayout)
		}

		columns = append(columns, columnName)
		placeholders = append(placeholders, "?")
		values = append(values, value)
	}
	return columns, placeholders, values
}

// Exists reports whether a row with the object's primary key is archived
func Exists(obj Persistable) (bool, error) {
	d, err := GetDB()
	if err != nil {
		return false, err
	}

	whereClause, args := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", obj.GetTableName(), whereClause)

	var count int
	if err := d.QueryRow(query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return count > 0, nil
}

// FindWhere loads archived objects matching an arbitrary where clause.
// The template object supplies the table and the concrete type to
// instantiate for each row.
func FindWhere(template Persistable, whereClause string, args ...any) ([]any, error) {
	d, err := GetDB()
	if err != nil {
		return nil, err
	}

	objType := reflect.TypeOf(template)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	columns := selectColumns(template)
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), template.GetTableName())
	if whereClause != "" {
		query = fmt.Sprintf("%s WHERE %s", query, whereClause)
	}

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", template.GetTableName(), err)
	}
	defer rows.Close()

	var results []any
	for rows.Next() {
		instance := reflect.New(objType)
		targets, timeFields := scanTargets(instance.Elem())
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		// Backfill parsed time columns
		for fieldIdx, raw := range timeFields {
			if raw.String == "" {
				continue
			}
			t, perr := parseSQLiteTime(raw.String)
			if perr != nil {
				logger.Warn("Unparseable timestamp in archive", raw.String, perr)
				continue
			}
			instance.Elem().Field(fieldIdx).Set(reflect.ValueOf(t))
		}
		results = append(results, instance.Interface())
	}
	return results, rows.Err()
}

func selectColumns(obj any) []string {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}
	var columns []string
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}
		columnName := field.Tag.Get("column")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}
		columns = append(columns, columnName)
	}
	return columns
}

// scanTargets builds sql.Rows.Scan destinations for every persisted
// field. time.Time fields scan into a NullString keyed by field index so
// the caller can parse them afterwards.
func scanTargets(v reflect.Value) ([]any, map[int]*sql.NullString) {
	objType := v.Type()
	var targets []any
	timeFields := make(map[int]*sql.NullString)

	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}
		if field.Type == reflect.TypeOf(time.Time{}) {
			ns := &sql.NullString{}
			timeFields[i] = ns
			targets = append(targets, ns)
			continue
		}
		targets = append(targets, v.Field(i).Addr().Interface())
	}
	return targets, timeFields
}

func parseSQLiteTime(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}

func buildWhereClause(primaryKey map[string]any) (string, []any) {
	var clauses []string
	var args []any
	for column, value := range primaryKey {
		clauses = append(clauses, fmt.Sprintf("%s = ?", column))
		args = append(args, value)
	}
	return strings.Join(clauses, " AND "), args
}
