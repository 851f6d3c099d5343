package keymap

import (
	"fmt"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ExportJSON renders entries as an indented JSON document in the flat
// "bindings" layout accepted by the loader. Inline handlers have no tag and
// are written with "inline": true instead of a command, so they do not load
// back.
func ExportJSON(entries []Entry) ([]byte, error) {
	doc := []byte(`{"bindings":[]}`)

	for _, e := range entries {
		item, err := exportEntry(e)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "bindings.-1", []byte(item))
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", e.Keys, err)
		}
	}

	return pretty.Pretty(doc), nil
}

func exportEntry(e Entry) (string, error) {
	item, err := sjson.Set("{}", "keys", string(e.Keys))
	if err != nil {
		return "", err
	}
	if e.Descriptor.Kind == KindInline {
		item, err = sjson.Set(item, "inline", true)
	} else {
		item, err = sjson.Set(item, "command", e.Descriptor.Tag)
	}
	if err != nil {
		return "", err
	}
	return sjson.Set(item, "context", e.Context)
}
