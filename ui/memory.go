package ui

import (
	"fmt"
	"io"
	"sync"
)

// MemoryPage is an in-memory page for tests and headless usage.
type MemoryPage struct {
	mu      sync.Mutex
	regions []*MemoryRegion
	focused string
	focuses []string

	submitDisabled bool
	submitLabel    string
}

func NewMemoryPage() *MemoryPage {
	return &MemoryPage{submitLabel: IdleLabel}
}

type MemoryRegion struct {
	mu       sync.Mutex
	text     string
	scrolled int
}

func (r *MemoryRegion) SetText(text string) {
	r.mu.Lock()
	r.text = text
	r.mu.Unlock()
}

func (r *MemoryRegion) ScrollIntoView() {
	r.mu.Lock()
	r.scrolled++
	r.mu.Unlock()
}

func (r *MemoryRegion) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text
}

func (r *MemoryRegion) Scrolled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scrolled
}

func (p *MemoryPage) ErrorRegion() Region {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.regions) == 0 {
		return nil
	}
	return p.regions[0]
}

func (p *MemoryPage) PrependErrorRegion() Region {
	p.mu.Lock()
	defer p.mu.Unlock()
	region := &MemoryRegion{}
	p.regions = append([]*MemoryRegion{region}, p.regions...)
	return region
}

func (p *MemoryPage) Focus(field string) {
	p.mu.Lock()
	p.focused = field
	p.focuses = append(p.focuses, field)
	p.mu.Unlock()
}

func (p *MemoryPage) SetSubmitControl(disabled bool, label string) {
	p.mu.Lock()
	p.submitDisabled = disabled
	p.submitLabel = label
	p.mu.Unlock()
}

// Regions returns every error region in page order.
func (p *MemoryPage) Regions() []*MemoryRegion {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*MemoryRegion, len(p.regions))
	copy(out, p.regions)
	return out
}

// ErrorText returns the visible error message, empty when none is shown.
func (p *MemoryPage) ErrorText() string {
	regions := p.Regions()
	if len(regions) == 0 {
		return ""
	}
	return regions[0].Text()
}

func (p *MemoryPage) Focused() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focused
}

// FocusHistory lists every focused field, oldest first.
func (p *MemoryPage) FocusHistory() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.focuses...)
}

func (p *MemoryPage) Submit() (disabled bool, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitDisabled, p.submitLabel
}

// WriterPage renders page updates as text lines, for terminals.
type WriterPage struct {
	w      io.Writer
	region *writerRegion
}

func NewWriterPage(w io.Writer) *WriterPage {
	return &WriterPage{w: w}
}

type writerRegion struct {
	w    io.Writer
	text string
}

func (r *writerRegion) SetText(text string) {
	r.text = text
}

func (r *writerRegion) ScrollIntoView() {
	_, _ = fmt.Fprintf(r.w, "! %s\n", r.text)
}

func (p *WriterPage) ErrorRegion() Region {
	if p.region == nil {
		return nil
	}
	return p.region
}

func (p *WriterPage) PrependErrorRegion() Region {
	p.region = &writerRegion{w: p.w}
	return p.region
}

func (p *WriterPage) Focus(field string) {
	_, _ = fmt.Fprintf(p.w, "> check field %q\n", field)
}

func (p *WriterPage) SetSubmitControl(disabled bool, label string) {
	state := "enabled"
	if disabled {
		state = "disabled"
	}
	_, _ = fmt.Fprintf(p.w, "[%s] (%s)\n", label, state)
}
