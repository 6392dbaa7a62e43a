package ui

import (
	"sync"

	"github.com/tbxark/briefpay/types"
)

const (
	IdleLabel = "Submit and Pay"
	BusyLabel = "Processing..."
)

// Page is the part of the host page the submission flow is allowed to touch.
type Page interface {
	// ErrorRegion returns the existing error region, or nil.
	ErrorRegion() Region
	// PrependErrorRegion inserts a new error region ahead of the form content.
	PrependErrorRegion() Region
	Focus(field string)
	SetSubmitControl(disabled bool, label string)
}

type Region interface {
	SetText(text string)
	ScrollIntoView()
}

type ErrorReporter struct {
	page Page
}

func NewErrorReporter(page Page) *ErrorReporter {
	return &ErrorReporter{page: page}
}

// ShowError replaces the message of the single error region, creating it on first use.
func (r *ErrorReporter) ShowError(message string) {
	region := r.page.ErrorRegion()
	if region == nil {
		region = r.page.PrependErrorRegion()
	}
	region.SetText(message)
	region.ScrollIntoView()
}

// FocusField moves input focus to the offending field.
func (r *ErrorReporter) FocusField(field string) {
	if field == "" {
		return
	}
	r.page.Focus(field)
}

type LoadingIndicator struct {
	page Page

	mu       sync.Mutex
	busy     bool
	disabled bool
}

func NewLoadingIndicator(page Page) *LoadingIndicator {
	return &LoadingIndicator{page: page}
}

func (l *LoadingIndicator) SetLoading(loading bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.busy = loading
	if l.disabled {
		return
	}
	if loading {
		l.page.SetSubmitControl(true, BusyLabel)
	} else {
		l.page.SetSubmitControl(false, IdleLabel)
	}
}

// TryBegin switches to the busy state unless the control is already busy or disabled.
func (l *LoadingIndicator) TryBegin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy || l.disabled {
		return false
	}
	l.busy = true
	l.page.SetSubmitControl(true, BusyLabel)
	return true
}

// Disable turns the submit control off for the rest of the page lifetime.
func (l *LoadingIndicator) Disable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disabled = true
	l.page.SetSubmitControl(true, IdleLabel)
}

func (l *LoadingIndicator) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy
}

// State reports the form UI state shown by the submit control.
func (l *LoadingIndicator) State() types.UIState {
	if l.Busy() {
		return types.UISubmitting
	}
	return types.UIIdle
}

func (l *LoadingIndicator) Disabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disabled
}
