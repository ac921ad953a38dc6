// Package ignoredirective covers //supercall:ignore handling.
package ignoredirective

type Base struct{}

func (Base) Close() error { return nil }
func (Base) Open() error  { return nil }
func (Base) Flush() error { return nil }

type Ignored struct{ Base }

//supercall:ignore
func (Ignored) Close() error { return nil }

type Specific struct {
	Base
	ok bool
}

//supercall:ignore conditional - flushing twice is harmful
func (s Specific) Flush() error {
	if s.ok {
		return s.Base.Flush()
	}
	return nil
}

//supercall:ignore conditional // want `unused supercall:ignore directive for checker\(s\): conditional`
func (Specific) Open() error { return nil } // want `virtual override function Open is not calling parent implementation\.`

type Unused struct{ Base }

//supercall:ignore // want `unused supercall:ignore directive`
func (u Unused) Close() error {
	return u.Base.Close()
}
