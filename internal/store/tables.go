package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/smartstudy/ent/schema"
)

// Table names.
const (
	tableSets         = "sets"
	tableQuestions    = "questions"
	tableStudyState   = "study_states"
	tableSessionEvent = "session_events"
	tableAnswerEvent  = "answer_events"
	tableQuestEvent   = "quest_events"
	tableRewardEvent  = "reward_events"
	tableLLMEvent     = "llm_request_events"
)

// entities maps table names to their ent schema definitions. Tables are
// derived from the schema descriptors at startup, so ent/schema is the
// single source of truth for columns and indexes.
var entities = []struct {
	table  string
	schema ent.Interface
}{
	{tableSets, entschema.Set{}},
	{tableQuestions, entschema.Question{}},
	{tableStudyState, entschema.StudyState{}},
	{tableSessionEvent, entschema.SessionEvent{}},
	{tableAnswerEvent, entschema.AnswerEvent{}},
	{tableQuestEvent, entschema.QuestEvent{}},
	{tableRewardEvent, entschema.RewardEvent{}},
	{tableLLMEvent, entschema.LLMRequestEvent{}},
}

// Tables returns the migration tables for every entity.
func Tables() ([]*schema.Table, error) {
	tables := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := tableFor(e.table, e.schema)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (s *Store) migrate(ctx context.Context) error {
	tables, err := Tables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(entsql.OpenDB(s.dialect, s.db))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}

// tableFor builds a schema.Table from an ent schema's fields, mixin fields
// and indexes. Entities without an explicit "id" field get an
// auto-increment integer primary key, as ent does.
func tableFor(name string, s ent.Interface) (*schema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := &schema.Table{Name: name}
	byName := make(map[string]*schema.Column)

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		col := &schema.Column{
			Name:     columnName(d),
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Unique:   d.Unique,
			Nullable: d.Optional,
			Default:  staticDefault(d),
		}
		if col.Name == "id" {
			col.Unique = true
			t.PrimaryKey = []*schema.Column{col}
		}
		t.Columns = append(t.Columns, col)
		byName[col.Name] = col
	}

	if len(t.PrimaryKey) == 0 {
		id := &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
		t.Columns = append([]*schema.Column{id}, t.Columns...)
		t.PrimaryKey = []*schema.Column{id}
		byName["id"] = id
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		if len(d.Edges) > 0 {
			return nil, fmt.Errorf("%s: edge indexes are not supported", name)
		}
		si := &schema.Index{
			Name:   d.StorageKey,
			Unique: d.Unique,
		}
		if si.Name == "" {
			si.Name = name + "_" + strings.Join(d.Fields, "_")
		}
		for _, fname := range d.Fields {
			col, ok := byName[fname]
			if !ok {
				return nil, fmt.Errorf("%s: index on unknown field %q", name, fname)
			}
			si.Columns = append(si.Columns, col)
		}
		t.Indexes = append(t.Indexes, si)
	}
	return t, nil
}

func columnName(d *field.Descriptor) string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}

// staticDefault returns literal defaults only. Function defaults such as
// time.Now are applied by the store when inserting.
func staticDefault(d *field.Descriptor) any {
	switch d.Default.(type) {
	case bool, int, int64, string, float64:
		return d.Default
	}
	return nil
}
