// Package runtime knows which toolchain serves each language, which of them
// are installed, and at what version.
package runtime

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judge/internal/types"
)

const probeTimeout = 10 * time.Second

var versionPattern = regexp.MustCompile(`\d+(\.\d+){0,2}`)

// Runtime is the probed state of one toolchain
type Runtime struct {
	Toolchain Toolchain
	Version   *semver.Version
	Available bool
	Binaries  []string
	Err       string
}

// Info renders the runtime for API responses
func (rt *Runtime) Info() types.RuntimeInfo {
	info := types.RuntimeInfo{
		Language:  rt.Toolchain.Language,
		Aliases:   rt.Toolchain.Language.Aliases(),
		Compiled:  rt.Toolchain.Compiled(),
		Available: rt.Available,
		Binaries:  rt.Binaries,
		Error:     rt.Err,
	}
	if rt.Version != nil {
		info.Version = rt.Version.String()
	}
	return info
}

// Manager handles toolchain lookup and version detection
type Manager struct {
	toolchains map[types.Language]Toolchain

	mutex    sync.RWMutex
	runtimes map[types.Language]*Runtime
	logger   *logrus.Entry
}

// NewManager creates a manager over the default toolchains with overrides
// applied on top
func NewManager(overrides map[types.Language]Toolchain) *Manager {
	return &Manager{
		toolchains: Merge(Defaults(), overrides),
		runtimes:   make(map[types.Language]*Runtime),
		logger:     logrus.WithField("component", "runtime"),
	}
}

// Toolchain returns the command templates of a language
func (m *Manager) Toolchain(lang types.Language) (Toolchain, bool) {
	tc, ok := m.toolchains[lang]
	return tc, ok
}

// Probe checks every toolchain's binaries and version, replacing the cached
// state
func (m *Manager) Probe(ctx context.Context) []types.RuntimeInfo {
	probed := make(map[types.Language]*Runtime, len(m.toolchains))
	for _, lang := range types.Languages {
		tc, ok := m.toolchains[lang]
		if !ok {
			continue
		}
		probed[lang] = m.probe(ctx, tc)
	}

	m.mutex.Lock()
	m.runtimes = probed
	m.mutex.Unlock()

	available := 0
	for _, rt := range probed {
		if rt.Available {
			available++
		}
	}
	m.logger.Infof("Detected %d of %d runtimes", available, len(probed))

	return m.List()
}

func (m *Manager) probe(ctx context.Context, tc Toolchain) *Runtime {
	rt := &Runtime{Toolchain: tc, Binaries: tc.binaries()}

	for _, bin := range rt.Binaries {
		if _, err := exec.LookPath(bin); err != nil {
			rt.Err = fmt.Sprintf("%s not found", bin)
			m.logger.WithField("language", tc.Language).Debug(rt.Err)
			return rt
		}
	}
	rt.Available = true

	if tc.Version == "" {
		return rt
	}
	argv, err := Expand(tc.Version, nil)
	if err != nil {
		rt.Err = err.Error()
		return rt
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	// java -version writes to stderr
	out, err := exec.CommandContext(probeCtx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		m.logger.WithError(err).WithField("language", tc.Language).Warn("Version probe failed")
		return rt
	}
	rt.Version = parseVersion(string(out))
	return rt
}

// parseVersion reads the first dotted version number in a tool's banner
func parseVersion(banner string) *semver.Version {
	match := versionPattern.FindString(banner)
	if match == "" {
		return nil
	}
	v, err := semver.NewVersion(match)
	if err != nil {
		return nil
	}
	return v
}

// List returns the cached runtimes in language order
func (m *Manager) List() []types.RuntimeInfo {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]types.RuntimeInfo, 0, len(m.runtimes))
	for _, lang := range types.Languages {
		if rt, ok := m.runtimes[lang]; ok {
			result = append(result, rt.Info())
		}
	}
	return result
}

// Get returns the cached runtime of a language
func (m *Manager) Get(lang types.Language) (*Runtime, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rt, ok := m.runtimes[lang]
	return rt, ok
}

// Check verifies that the detected toolchain of lang satisfies a semver
// constraint such as ">=3.10". An empty constraint always passes.
func (m *Manager) Check(lang types.Language, constraint string) error {
	if constraint == "" || constraint == "*" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return types.Wrap(err, types.KindUnsupportedLanguage, "invalid version constraint %q", constraint)
	}

	rt, ok := m.Get(lang)
	if !ok || !rt.Available {
		return types.Errorf(types.KindToolchainUnavailable, "no %s runtime available", lang)
	}
	if rt.Version == nil {
		return types.Errorf(types.KindUnsupportedLanguage, "%s runtime version unknown, cannot check %s", lang, constraint)
	}
	if !c.Check(rt.Version) {
		return types.Errorf(types.KindUnsupportedLanguage, "no %s runtime matching %s (found %s)", lang, constraint, rt.Version)
	}
	return nil
}
