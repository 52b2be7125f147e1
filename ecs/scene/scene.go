// Package scene saves the entities of a World to YAML documents and loads them back through the
// type-erased component API. Component types must be in the World's catalog before loading (see
// ecs.DeclareComponent).
package scene

import (
	"fmt"
	"io"
	"iter"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/plus3/hotbean/ecs"
)

var ErrInvalidDocument = eris.New("invalid scene document")

// Document is a saved scene.
type Document struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"entities"`
}

// Entity holds the components of one saved entity. Ids are not saved; loading creates fresh
// entities in document order.
type Entity struct {
	Components []Component `yaml:"components"`
}

// Component is a single component value keyed by its registered name.
type Component struct {
	Type string `yaml:"type"`
	// Fingerprint identifies the Go layout the data was saved with.
	Fingerprint string    `yaml:"fingerprint"`
	Data        yaml.Node `yaml:"data"`
}

// Save captures every living entity of w in ascending id order, components ordered by id.
func Save(w *ecs.World, name string) (*Document, error) {
	return SaveEntities(w, name, w.Entities())
}

// SaveEntities captures the given entities in iteration order. Use it when some entities carry
// components that cannot be encoded, such as functions.
func SaveEntities(w *ecs.World, name string, entities iter.Seq[ecs.Entity]) (*Document, error) {
	doc := &Document{
		ID:   uuid.NewString(),
		Name: name,
	}

	for e := range entities {
		sig, err := w.Signature(e)
		if err != nil {
			return nil, err
		}

		entity := Entity{Components: make([]Component, 0, sig.Count())}
		for id := range sig.IDs() {
			c, err := saveComponent(w, e, id)
			if err != nil {
				return nil, eris.Wrapf(err, "saving entity %d", e)
			}
			entity.Components = append(entity.Components, c)
		}
		doc.Entities = append(doc.Entities, entity)
	}
	return doc, nil
}

func saveComponent(w *ecs.World, e ecs.Entity, id ecs.ComponentID) (Component, error) {
	name, err := w.ComponentName(id)
	if err != nil {
		return Component{}, err
	}
	t, err := w.Components().ComponentType(id)
	if err != nil {
		return Component{}, err
	}
	value, err := w.Component(e, id)
	if err != nil {
		return Component{}, err
	}

	c := Component{Type: name, Fingerprint: Fingerprint(t)}
	if err := c.Data.Encode(value); err != nil {
		return Component{}, eris.Wrapf(err, "encoding component %q", name)
	}
	return c, nil
}

// Encode writes doc as YAML.
func Encode(out io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "encoding scene")
	}
	return enc.Close()
}

// Decode reads a YAML document and checks its id.
func Decode(in io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(in).Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "decoding scene")
	}
	if _, err := uuid.Parse(doc.ID); err != nil {
		return nil, eris.Wrapf(ErrInvalidDocument, "scene id %q: %v", doc.ID, err)
	}
	return &doc, nil
}

// Load creates one entity per document entity and returns them in document order. Unknown
// component names fail with ecs.ErrComponentNotRegistered. A fingerprint that does not match the
// current Go type is logged and the data decoded as well as it can be. If loading fails, the
// entities created so far are destroyed again.
func Load(w *ecs.World, doc *Document) ([]ecs.Entity, error) {
	log := w.Logger().Named("scene")
	created := make([]ecs.Entity, 0, len(doc.Entities))

	rollback := func(err error) ([]ecs.Entity, error) {
		for _, e := range created {
			if destroyErr := w.DestroyEntity(e); destroyErr != nil {
				log.Error("rolling back scene load", zap.Uint32("entity", uint32(e)), zap.Error(destroyErr))
			}
		}
		return nil, err
	}

	for i, entity := range doc.Entities {
		e, err := w.CreateEntity()
		if err != nil {
			return rollback(err)
		}
		created = append(created, e)

		for _, c := range entity.Components {
			value, err := w.Components().New(c.Type)
			if err != nil {
				return rollback(eris.Wrapf(err, "loading entity %d of %q", i, doc.Name))
			}

			if fp := Fingerprint(reflect.TypeOf(value).Elem()); c.Fingerprint != "" && fp != c.Fingerprint {
				log.Warn("component layout changed since save",
					zap.String("component", c.Type),
					zap.String("saved", c.Fingerprint),
					zap.String("current", fp))
			}

			if c.Data.Kind != 0 {
				if err := c.Data.Decode(value); err != nil {
					return rollback(eris.Wrapf(err, "decoding component %q of entity %d", c.Type, i))
				}
			}
			if err := w.AddComponentValue(e, value); err != nil {
				return rollback(err)
			}
		}
	}

	log.Debug("scene loaded",
		zap.String("scene", doc.Name),
		zap.String("id", doc.ID),
		zap.Int("entities", len(created)))
	return created, nil
}

// Fingerprint hashes the layout of t: its kind and, for structs, each field name and type.
func Fingerprint(t reflect.Type) string {
	var b strings.Builder
	writeLayout(&b, t, 0)
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}

func writeLayout(b *strings.Builder, t reflect.Type, depth int) {
	b.WriteString(t.Kind().String())
	if t.Kind() != reflect.Struct || depth > 4 {
		b.WriteString("(" + t.String() + ")")
		return
	}
	b.WriteString("{")
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		b.WriteString(f.Name)
		b.WriteString(":")
		writeLayout(b, f.Type, depth+1)
		b.WriteString(";")
	}
	b.WriteString("}")
}
