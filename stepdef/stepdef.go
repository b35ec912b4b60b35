// Package stepdef implements the step registry (spec 4.G): a
// process-wide, append-only store of compiled step patterns bound to
// user-supplied functions, with reflect-based arity introspection done
// once at registration time.
//
// Grounded on the mutex-guarded collision-checking registry shape of
// core/decorators/registry.go (sync.RWMutex, Register* methods,
// checkCollision) combined with the reflect-based function
// introspection other_examples/.../gobdd.go performs when binding step
// functions (reflect.ValueOf(fn), fn.Type().NumIn()).
package stepdef

import (
	"reflect"
	"regexp"
	"sync"

	"github.com/pkg/errors"

	"github.com/SHIFT-LEFTER/shiftlefter-sub001/diag"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/idhash"
	"github.com/SHIFT-LEFTER/shiftlefter-sub001/location"
)

// Registration is one bound step pattern.
type Registration struct {
	ID         string
	PatternSrc string
	Pattern    *regexp.Regexp
	Arity      int
	Fn         reflect.Value
	FnType     reflect.Type
	Metadata   map[string]any
	Loc        location.Location
}

// Registry is a mutex-guarded, append-only store of Registrations,
// keyed by pattern source for duplicate detection.
type Registry struct {
	mu        sync.RWMutex
	byPattern map[string]*Registration
	byID      map[string]*Registration
	order     []string
}

// NewRegistry returns an empty registry. Production code normally uses
// the process-wide Default registry; NewRegistry exists so tests (and
// the test-only Clear operation, spec 4.G) can isolate state.
func NewRegistry() *Registry {
	return &Registry{byPattern: map[string]*Registration{}, byID: map[string]*Registration{}}
}

// Register binds patternSrc to fn, compiling the pattern and
// introspecting fn's arity exactly once. metadata is attached verbatim
// and is not inspected here (spec 4.G).
//
// Returns a *diag.Error for the two closed failure modes this step can
// produce (duplicate pattern, variadic function); a malformed
// pattern or a non-function fn are caller bugs, reported as a plain
// wrapped error since they fall outside the closed diagnostic taxonomy.
func (r *Registry) Register(patternSrc string, fn any, metadata map[string]any, loc location.Location) (*Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byPattern[patternSrc]; ok {
		return nil, diag.New(diag.RegistryDuplicate, loc,
			"pattern already registered: "+patternSrc,
			map[string]any{"pattern": patternSrc, "first_location": existing.Loc.String()})
	}

	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, errors.Errorf("stepdef: Register requires a function, got %T", fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, diag.New(diag.RegistryVariadic, loc,
			"variadic step functions are not supported: "+patternSrc,
			map[string]any{"pattern": patternSrc})
	}

	pattern, err := regexp.Compile(patternSrc)
	if err != nil {
		return nil, errors.Wrapf(err, "stepdef: invalid pattern %q", patternSrc)
	}

	reg := &Registration{
		ID:         idhash.ID("sd", patternSrc),
		PatternSrc: patternSrc,
		Pattern:    pattern,
		Arity:      ft.NumIn(),
		Fn:         fv,
		FnType:     ft,
		Metadata:   metadata,
		Loc:        loc,
	}
	r.byPattern[patternSrc] = reg
	r.byID[reg.ID] = reg
	r.order = append(r.order, reg.ID)
	return reg, nil
}

// Snapshot returns every registration in registration order. Readers
// under concurrent execution acquire one snapshot at binder entry
// (spec §5) rather than re-reading the live maps per lookup.
func (r *Registry) Snapshot() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Registration, len(r.order))
	for i, id := range r.order {
		out[i] = r.byID[id]
	}
	return out
}

// Clear resets the registry. It exists for tests only (spec 4.G).
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPattern = map[string]*Registration{}
	r.byID = map[string]*Registration{}
	r.order = nil
}

// Default is the process-wide registry most callers register against.
var Default = NewRegistry()

// Register registers against Default.
func Register(patternSrc string, fn any, metadata map[string]any, loc location.Location) (*Registration, error) {
	return Default.Register(patternSrc, fn, metadata, loc)
}

// Snapshot snapshots Default.
func Snapshot() []*Registration { return Default.Snapshot() }

// Clear resets Default. Test-only, per spec 4.G.
func Clear() { Default.Clear() }
