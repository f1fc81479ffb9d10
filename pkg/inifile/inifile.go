/*
 * Copyright 2026 Opsforge, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package inifile is an order-preserving model of a section/key/value text
// file ([section] headers over "key = value" lines). Parsing never fails:
// lines that don't parse are carried through verbatim, so a parse/render
// round trip reproduces the input byte for byte. Only entries explicitly
// overwritten or appended differ in the output.
package inifile

import (
	"fmt"
	"strings"
)

type entry struct {
	raw   string // original line, without newline; "" for appended entries
	key   string // parsed key; "" marks an opaque passthrough line
	value string
	dirty bool // value was set programmatically; rendered as "key = value"
}

type section struct {
	name   string
	header string // original header line; "" when the section was synthesized
	body   []entry
}

// File is a parsed section config file.
type File struct {
	// prelude holds lines seen before the first section header.
	prelude  []entry
	sections []section
	// trailingNewline records whether the source text ended with a newline
	// so Render can reproduce it.
	trailingNewline bool
}

// Parse builds a File from text. It is best effort and never fails.
func Parse(text string) *File {
	f := &File{trailingNewline: true}

	if text == "" {
		return f
	}

	f.trailingNewline = strings.HasSuffix(text, "\n")

	var cur *section

	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		stripped := strings.TrimSpace(line)

		if name, ok := parseHeader(stripped); ok {
			f.sections = append(f.sections, section{name: name, header: line})
			cur = &f.sections[len(f.sections)-1]

			continue
		}

		e := parseEntry(line, stripped)
		if cur == nil {
			f.prelude = append(f.prelude, e)
		} else {
			cur.body = append(cur.body, e)
		}
	}

	return f
}

func parseHeader(stripped string) (string, bool) {
	if len(stripped) < 3 || !strings.HasPrefix(stripped, "[") || !strings.HasSuffix(stripped, "]") {
		return "", false
	}

	name := strings.TrimSpace(stripped[1 : len(stripped)-1])
	if name == "" {
		return "", false
	}

	return name, true
}

func parseEntry(raw, stripped string) entry {
	if stripped == "" || strings.HasPrefix(stripped, "#") || strings.HasPrefix(stripped, ";") {
		return entry{raw: raw}
	}

	idx := strings.Index(stripped, "=")
	if idx <= 0 {
		return entry{raw: raw}
	}

	key := strings.TrimSpace(stripped[:idx])
	if key == "" {
		return entry{raw: raw}
	}

	return entry{
		raw:   raw,
		key:   key,
		value: strings.TrimSpace(stripped[idx+1:]),
	}
}

// Get returns the value of key within section.
func (f *File) Get(sectionName, key string) (string, bool) {
	sec := f.find(sectionName)
	if sec == nil {
		return "", false
	}

	for i := range sec.body {
		if sec.body[i].key == key {
			return sec.body[i].value, true
		}
	}

	return "", false
}

// Set overwrites key in section, appending the key at the end of the section
// if absent and creating the section at the end of the file if needed. No
// other entry is touched, reordered, or removed.
func (f *File) Set(sectionName, key, value string) {
	sec := f.find(sectionName)
	if sec == nil {
		f.sections = append(f.sections, section{name: sectionName})
		sec = &f.sections[len(f.sections)-1]
	}

	for i := range sec.body {
		if sec.body[i].key == key {
			sec.body[i].value = value
			sec.body[i].dirty = true

			return
		}
	}

	e := entry{key: key, value: value, dirty: true}

	// Keep trailing blank lines at the section end so blocks stay separated.
	at := len(sec.body)
	for at > 0 && sec.body[at-1].key == "" && strings.TrimSpace(sec.body[at-1].raw) == "" {
		at--
	}

	sec.body = append(sec.body, entry{})
	copy(sec.body[at+1:], sec.body[at:])
	sec.body[at] = e
}

// Render serializes the file back to text in original order.
func (f *File) Render() string {
	var lines []string

	for _, e := range f.prelude {
		lines = append(lines, renderEntry(e))
	}

	for i := range f.sections {
		sec := &f.sections[i]

		if sec.header != "" {
			lines = append(lines, sec.header)
		} else {
			lines = append(lines, fmt.Sprintf("[%s]", sec.name))
		}

		for _, e := range sec.body {
			lines = append(lines, renderEntry(e))
		}
	}

	if len(lines) == 0 {
		return ""
	}

	out := strings.Join(lines, "\n")
	if f.trailingNewline {
		out += "\n"
	}

	return out
}

func renderEntry(e entry) string {
	if e.key != "" && (e.dirty || e.raw == "") {
		return fmt.Sprintf("%s = %s", e.key, e.value)
	}

	return e.raw
}

func (f *File) find(name string) *section {
	for i := range f.sections {
		if f.sections[i].name == name {
			return &f.sections[i]
		}
	}

	return nil
}
