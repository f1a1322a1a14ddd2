// Package view renders the submitted record read-only, as text lines or as
// HTML, and keeps a live rendering in sync with the record store.
package view

import (
	"strings"
	"sync"

	"github.com/agentstation/userdetails/pkg/profile"
	"github.com/agentstation/userdetails/pkg/store"
)

// Line is one labeled value of the display.
type Line struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Display labels.
const (
	LabelFirstName   = "First Name"
	LabelLastName    = "Last Name"
	LabelEmail       = "Email"
	LabelPhoneNumber = "Phone Number"
	LabelGender      = "Gender"
	LabelDateOfBirth = "Date of Birth"
	LabelTechStack   = "Tech Stack"
)

// Lines returns the labeled values of r in display order. The tech stack
// line joins entries with ", " and is left out when the list is empty.
func Lines(r profile.Record) []Line {
	lines := []Line{
		{LabelFirstName, r.FirstName},
		{LabelLastName, r.LastName},
		{LabelEmail, r.Email},
		{LabelPhoneNumber, r.PhoneNumber},
		{LabelGender, string(r.Gender)},
		{LabelDateOfBirth, r.DateOfBirth},
	}
	if len(r.TechStack) > 0 {
		lines = append(lines, Line{LabelTechStack, strings.Join(r.TechStack, ", ")})
	}
	return lines
}

// Text renders r as "Label: Value" lines. It returns "" when ok is false.
func Text(r profile.Record, ok bool) string {
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, line := range Lines(r) {
		b.WriteString(line.Label)
		b.WriteString(": ")
		b.WriteString(line.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

// Source is the observable record holder a Display follows.
type Source interface {
	Current() (profile.Record, bool)
	Subscribe(fn store.Listener) (unsubscribe func())
}

// Display follows a Source and keeps the latest record for rendering.
type Display struct {
	mu          sync.RWMutex
	record      profile.Record
	ok          bool
	renders     uint64
	unsubscribe func()
}

// NewDisplay subscribes to src. Call Close to stop following it.
func NewDisplay(src Source) *Display {
	d := &Display{}
	d.unsubscribe = src.Subscribe(d.set)
	// A record submitted before the subscription is still shown.
	if r, ok := src.Current(); ok {
		d.mu.Lock()
		if !d.ok {
			d.record, d.ok = r, true
		}
		d.mu.Unlock()
	}
	return d
}

func (d *Display) set(r profile.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record, d.ok = r, true
	d.renders++
}

// Record returns the displayed record, if any.
func (d *Display) Record() (profile.Record, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.record.Clone(), d.ok
}

// Lines returns the display lines, or nil when nothing was submitted.
func (d *Display) Lines() []Line {
	r, ok := d.Record()
	if !ok {
		return nil
	}
	return Lines(r)
}

// Text returns the text rendering, or "" when nothing was submitted.
func (d *Display) Text() string {
	return Text(d.Record())
}

// Updates returns how many store updates the display has received.
func (d *Display) Updates() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.renders
}

// Close stops following the source.
func (d *Display) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
}
