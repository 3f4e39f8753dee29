// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"
	"slices"
	"strings"
)

// MemoryFootprint describes the memory consumption of a component, broken
// down into the consumption of its sub-components.
type MemoryFootprint struct {
	value    uintptr
	children map[string]*MemoryFootprint
	note     string
}

// NewMemoryFootprint creates a footprint of the given number of bytes,
// excluding any children.
func NewMemoryFootprint(value uintptr) *MemoryFootprint {
	return &MemoryFootprint{
		value:    value,
		children: map[string]*MemoryFootprint{},
	}
}

// AddChild attaches the footprint of a named sub-component.
func (f *MemoryFootprint) AddChild(name string, child *MemoryFootprint) {
	f.children[name] = child
}

// GetChild returns the footprint of the named sub-component, or nil.
func (f *MemoryFootprint) GetChild(name string) *MemoryFootprint {
	return f.children[name]
}

// SetNote attaches a note shown next to the footprint when printed.
func (f *MemoryFootprint) SetNote(note string) {
	f.note = note
}

// Value returns the bytes of this footprint, excluding children.
func (f *MemoryFootprint) Value() uintptr {
	return f.value
}

// Total returns the bytes of this footprint including all children.
func (f *MemoryFootprint) Total() uintptr {
	total := f.value
	for _, child := range f.children {
		total += child.Total()
	}
	return total
}

// String renders the footprint as a tree, one line per component.
func (f *MemoryFootprint) String() string {
	var b strings.Builder
	f.print(&b, ".")
	return b.String()
}

func (f *MemoryFootprint) print(b *strings.Builder, path string) {
	names := make([]string, 0, len(f.children))
	for name := range f.children {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		f.children[name].print(b, path+"/"+name)
	}
	fmt.Fprintf(b, "%s %s", formatBytes(f.Total()), path)
	if f.note != "" {
		fmt.Fprintf(b, " %s", f.note)
	}
	b.WriteString("\n")
}

func formatBytes(bytes uintptr) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	value := float64(bytes)
	suffix := ""
	for _, s := range []string{"KB", "MB", "GB", "TB"} {
		value /= unit
		suffix = s
		if value < unit {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", value, suffix)
}
