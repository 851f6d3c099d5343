package keymap

import (
	"errors"
	"fmt"
)

// GlobalContext is the default context and the lookup fallback.
const GlobalContext = "global"

// ErrInvalidDescriptor is returned when a descriptor has neither a command
// tag nor a handler, or has no context.
var ErrInvalidDescriptor = errors.New("invalid command descriptor")

// Kind distinguishes the two descriptor variants.
type Kind uint8

const (
	// KindNone is the zero Kind; a descriptor of this kind is invalid.
	KindNone Kind = iota
	// KindNamed refers to a command tag resolved through a HandlerTable.
	KindNamed
	// KindInline carries its handler directly.
	KindInline
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindInline:
		return "inline"
	default:
		return "none"
	}
}

// Descriptor is what a chord sequence is bound to.
type Descriptor struct {
	Kind    Kind
	Tag     string
	Handler Handler
	Context string
}

// Named creates a descriptor for a command tag in the global context.
func Named(tag string) Descriptor {
	return Descriptor{Kind: KindNamed, Tag: tag, Context: GlobalContext}
}

// Inline creates a descriptor bound directly to h in the global context.
func Inline(h Handler) Descriptor {
	return Descriptor{Kind: KindInline, Handler: h, Context: GlobalContext}
}

// InlineFunc is Inline for a plain function.
func InlineFunc(fn func(cmd *Command)) Descriptor {
	if fn == nil {
		return Descriptor{Kind: KindInline, Context: GlobalContext}
	}
	return Inline(HandlerFunc(fn))
}

// In returns a copy of d scoped to context.
func (d Descriptor) In(context string) Descriptor {
	d.Context = context
	return d
}

// Validate checks that d can be registered.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindNamed:
		if d.Tag == "" {
			return fmt.Errorf("%w: empty command tag", ErrInvalidDescriptor)
		}
	case KindInline:
		if d.Handler == nil {
			return fmt.Errorf("%w: nil handler", ErrInvalidDescriptor)
		}
	default:
		return fmt.Errorf("%w: no command or handler", ErrInvalidDescriptor)
	}
	if d.Context == "" {
		return fmt.Errorf("%w: empty context", ErrInvalidDescriptor)
	}
	return nil
}

// String returns a short description such as "save@global" or "<inline>@git".
func (d Descriptor) String() string {
	name := d.Tag
	if d.Kind == KindInline {
		name = "<inline>"
	}
	return name + "@" + d.Context
}
