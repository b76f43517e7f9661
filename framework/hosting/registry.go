package hosting

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/km-arc/go-multihost/framework/container"
)

// Registry invariant violations. These indicate a programming error in the
// orchestration sequence, not a runtime condition.
var (
	ErrRegistrySealed = errors.New("hosting: registry is sealed")
	ErrDuplicateHost  = errors.New("hosting: host already registered")
)

// HostRuntimeInfo is the registry's record of one built and mounted host.
// The registry does not look inside the scope beyond disposing it.
type HostRuntimeInfo struct {
	ID          uuid.UUID
	Name        string
	RoutePrefix string
	Scope       *container.Scope
	CreatedAt   time.Time
}

// HostRegistry is the process-lifetime directory of built hosts. It moves
// one way from unsealed to sealed; registrations are linearizable with
// respect to sealing, and teardown is a single aggregated sweep.
type HostRegistry struct {
	mu       sync.RWMutex
	hosts    map[string]*HostRuntimeInfo // folded name → info
	order    []string                    // folded names, insertion order
	sealed   bool
	disposed bool
	logger   zerolog.Logger
}

// NewHostRegistry creates an empty, unsealed registry.
func NewHostRegistry(logger zerolog.Logger) *HostRegistry {
	return &HostRegistry{
		hosts:  make(map[string]*HostRuntimeInfo),
		logger: logger,
	}
}

// Register inserts a host record. It fails once the registry is sealed, and
// on a duplicate name (case-insensitive) — the definition layer should have
// caught the duplicate already, this is the defensive re-check.
func (r *HostRegistry) Register(info *HostRuntimeInfo) error {
	if info == nil {
		return fmt.Errorf("hosting: nil host info")
	}
	folded := strings.ToLower(info.Name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: cannot register host %q", ErrRegistrySealed, info.Name)
	}
	if _, exists := r.hosts[folded]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateHost, info.Name)
	}
	r.hosts[folded] = info
	r.order = append(r.order, folded)
	return nil
}

// Seal closes the registry for registration. Idempotent; never reversed.
func (r *HostRegistry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// IsSealed reports whether Seal has been called.
func (r *HostRegistry) IsSealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup finds a host by name, case-insensitively. A missing (or blank)
// name is not an error: it reports ok=false.
func (r *HostRegistry) Lookup(name string) (*HostRuntimeInfo, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.hosts[strings.ToLower(name)]
	return info, ok
}

// Snapshot returns the current entries in insertion order. The slice is a
// copy; it stays consistent while registrations continue.
func (r *HostRegistry) Snapshot() []*HostRuntimeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*HostRuntimeInfo, 0, len(r.order))
	for _, folded := range r.order {
		out = append(out, r.hosts[folded])
	}
	return out
}

// Len returns the number of registered hosts.
func (r *HostRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// DisposeAll tears down every registered host scope. Each scope gets a full
// disposal attempt regardless of the others' outcomes; failures are
// aggregated into the single returned error. The entry collection is
// cleared afterwards either way, and a second call is a no-op.
func (r *HostRegistry) DisposeAll() error {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return nil
	}
	r.disposed = true
	entries := make([]*HostRuntimeInfo, 0, len(r.order))
	for _, folded := range r.order {
		entries = append(entries, r.hosts[folded])
	}
	r.mu.Unlock()

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  error
	)
	for _, info := range entries {
		wg.Add(1)
		go func(info *HostRuntimeInfo) {
			defer wg.Done()
			r.logger.Debug().Str("host", info.Name).Msg("disposing host scope")
			if err := r.dispose(info); err != nil {
				r.logger.Error().Err(err).Str("host", info.Name).Msg("host scope disposal failed")
				errMu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("hosting: disposing host %q: %w", info.Name, err))
				errMu.Unlock()
			}
		}(info)
	}
	wg.Wait()

	r.mu.Lock()
	r.hosts = make(map[string]*HostRuntimeInfo)
	r.order = nil
	r.mu.Unlock()

	return errs
}

// dispose closes one scope, converting a panic into an error so one broken
// closer cannot take down the sweep.
func (r *HostRegistry) dispose(info *HostRuntimeInfo) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during disposal: %v", rec)
		}
	}()
	return info.Scope.Close()
}
