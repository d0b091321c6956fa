package mumips

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/cpu/mips"
	"github.com/lunixbochs/mumips/go/loader"
	"github.com/lunixbochs/mumips/go/models"
	"github.com/lunixbochs/mumips/go/models/trace"
)

// Sim ties a loaded program to a cpu, and owns the tooling around it.
type Sim struct {
	*mips.Cpu

	config *models.Config
	loader models.Loader
	status *models.StatusDiff
	trace  *trace.Trace
}

// NewSim loads the program at path into a fresh cpu.
func NewSim(path string, config *models.Config) (*Sim, error) {
	if config == nil {
		config = &models.Config{}
	}
	config.Init()
	entry := config.LoadBase
	if entry == 0 {
		text, ok := config.Region("text")
		if !ok {
			return nil, errors.New("memory map has no text region")
		}
		entry = text.Addr
	}
	l, err := loader.LoadFile(path, entry)
	if err != nil {
		return nil, err
	}
	return NewSimLoader(l, config)
}

// NewSimLoader runs an already loaded program.
func NewSimLoader(l models.Loader, config *models.Config) (*Sim, error) {
	if config == nil {
		config = &models.Config{}
	}
	c, err := mips.New(config)
	if err != nil {
		return nil, err
	}
	s := &Sim{
		Cpu:    c,
		config: config,
		loader: l,
	}
	s.status = &models.StatusDiff{Arch: mips.Arch, U: c}
	n, err := c.Load(l.Words(), uint32(l.Entry()))
	if err != nil {
		return nil, err
	}
	if config.Verbose {
		for _, line := range models.WordDump(l.Entry(), l.Words()) {
			s.Printf("%s\n", line)
		}
	}
	s.Printf("Program loaded into memory.\n%d words written into memory.\n\n", n)
	if config.TraceFile != "" {
		if err := s.StartTrace(config.TraceFile); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sim) Loader() models.Loader {
	return s.loader
}

func (s *Sim) Config() *models.Config {
	return s.config
}

func (s *Sim) Status() *models.StatusDiff {
	return s.status
}

// Reset restarts the program and forgets the previous register dump.
func (s *Sim) Reset() error {
	s.status.Reset()
	if err := s.flushTrace(); err != nil {
		return err
	}
	if err := s.Cpu.Reset(); err != nil {
		return err
	}
	return s.rekeyTrace()
}

// Listing renders the loaded program one word per line.
func (s *Sim) Listing() []string {
	words, base := s.Program()
	return models.WordDump(uint64(base), words)
}

// Dis disassembles count words starting at addr.
func (s *Sim) Dis(addr uint32, count int) (string, error) {
	if count <= 0 {
		return "", errors.Errorf("invalid word count %d", count)
	}
	mem, err := s.MemRead(uint64(addr), uint64(count)*4)
	if err != nil {
		return "", err
	}
	return models.Disas(&mips.Dis{}, mem, uint64(addr))
}

// StartTrace records execution to path until StopTrace or Close.
func (s *Sim) StartTrace(path string) error {
	if s.trace != nil {
		return errors.New("trace already running")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create tracefile '%s'", path)
	}
	t, err := trace.NewTrace(s.Cpu, mips.Arch, f)
	if err != nil {
		f.Close()
		return err
	}
	if err := t.Attach(); err != nil {
		t.Detach()
		f.Close()
		return err
	}
	s.trace = t
	return nil
}

func (s *Sim) StopTrace() error {
	if s.trace == nil {
		return nil
	}
	err := s.trace.Detach()
	s.trace = nil
	return err
}

func (s *Sim) SaveFile(path string) error {
	data, err := s.Save()
	if err != nil {
		return err
	}
	return errors.Wrap(ioutil.WriteFile(path, data, 0644), "failed to write savestate")
}

func (s *Sim) RestoreFile(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read savestate")
	}
	if err := s.flushTrace(); err != nil {
		return err
	}
	if err := s.Restore(data); err != nil {
		return err
	}
	s.status.Reset()
	return s.rekeyTrace()
}

// flushTrace closes the recording's pending frame while the registers still
// hold its results.
func (s *Sim) flushTrace() error {
	if s.trace == nil {
		return nil
	}
	return errors.Wrap(s.trace.Flush(), "trace flush failed")
}

func (s *Sim) rekeyTrace() error {
	if s.trace == nil {
		return nil
	}
	return errors.Wrap(s.trace.Rekey(), "trace keyframe failed")
}

func (s *Sim) Close() error {
	return s.StopTrace()
}
