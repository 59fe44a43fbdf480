// Package signals connects model receivers to gorm's callback chain.
//
// gorm owns the registry and the dispatch order; this package only filters
// callbacks by model type and hands receivers the saved instances.
package signals

import (
	"context" // Request context for receivers
	"fmt"     // Error wrapping
	"reflect" // Model type matching

	"accounts_portal/internal/metrics" // Signal counters

	"gorm.io/gorm" // GORM ORM library
)

// Kind names a model lifecycle signal
type Kind string

const (
	PreSave    Kind = "pre_save"
	PostSave   Kind = "post_save"
	PreDelete  Kind = "pre_delete"
	PostDelete Kind = "post_delete"
)

// Event is what a receiver is called with
type Event struct {
	Kind     Kind            // Signal being sent
	Sender   reflect.Type    // Model struct type
	Instance any             // Pointer to the model value
	Created  bool            // Save is an insert
	Ctx      context.Context // Context of the originating statement
}

// Receiver handles one event. An error from a pre_* receiver aborts the write and rolls
// the transaction back; post_* receivers run after commit and their errors are only
// reported to the caller.
type Receiver func(Event) error

// Connect registers fn for kind on db's callback chain. sender limits the receiver to one
// model type (a value or pointer of it); nil means every model. dispatchUID must be unique per kind.
func Connect(db *gorm.DB, kind Kind, sender any, dispatchUID string, fn Receiver) error {
	senderType := modelType(sender)
	name := "signals:" + string(kind) + ":" + dispatchUID
	cb := db.Callback()

	var err error
	switch kind {
	case PreSave:
		if err = cb.Create().Before("gorm:create").Register(name+":create", dispatch(kind, senderType, true, fn)); err == nil {
			err = cb.Update().Before("gorm:update").Register(name+":update", dispatch(kind, senderType, false, fn))
		}
	case PostSave:
		if err = cb.Create().After("gorm:after_create").Register(name+":create", dispatch(kind, senderType, true, fn)); err == nil {
			err = cb.Update().After("gorm:after_update").Register(name+":update", dispatch(kind, senderType, false, fn))
		}
	case PreDelete:
		err = cb.Delete().Before("gorm:delete").Register(name, dispatch(kind, senderType, false, fn))
	case PostDelete:
		err = cb.Delete().After("gorm:after_delete").Register(name, dispatch(kind, senderType, false, fn))
	default:
		return fmt.Errorf("unknown signal %q", kind)
	}
	if err != nil {
		return fmt.Errorf("connect %s receiver %q: %w", kind, dispatchUID, err)
	}
	return nil
}

func dispatch(kind Kind, senderType reflect.Type, created bool, fn Receiver) func(*gorm.DB) {
	post := kind == PostSave || kind == PostDelete
	return func(tx *gorm.DB) {
		stmt := tx.Statement
		if stmt.Schema == nil || stmt.SkipHooks {
			return
		}
		if post && tx.Error != nil {
			return // Nothing was written
		}
		if senderType != nil && stmt.Schema.ModelType != senderType {
			return
		}
		for _, instance := range instances(stmt.ReflectValue) {
			metrics.SignalsSentTotal.WithLabelValues(string(kind), stmt.Schema.Name).Inc()
			err := fn(Event{
				Kind:     kind,
				Sender:   stmt.Schema.ModelType,
				Instance: instance,
				Created:  created,
				Ctx:      stmt.Context,
			})
			if err != nil {
				_ = tx.AddError(err)
				return
			}
		}
	}
}

// instances flattens the statement value into pointers to each model
func instances(rv reflect.Value) []any {
	rv = reflect.Indirect(rv)
	switch rv.Kind() {
	case reflect.Struct:
		return []any{addr(rv)}
	case reflect.Slice, reflect.Array:
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, addr(reflect.Indirect(rv.Index(i))))
		}
		return out
	}
	return nil
}

func addr(v reflect.Value) any {
	if v.CanAddr() {
		return v.Addr().Interface()
	}
	return v.Interface()
}

func modelType(sender any) reflect.Type {
	if sender == nil {
		return nil
	}
	t := reflect.TypeOf(sender)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
