// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package langtext writes the converted UI strings as a language.ini file in
// the legacy codepage of the selected language.
package langtext

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"gopkg.in/ini.v1"

	"github.com/suprsokr/wkconvert/genie"
)

// FileName is the name of the string file read by the AoC engine patch.
const FileName = "language.ini"

// Values are single lines; "#", ";", quotes and trailing backslashes are
// literal text.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
}

var codepages = map[string]encoding.Encoding{
	"en": charmap.Windows1252,
	"de": charmap.Windows1252,
	"es": charmap.Windows1252,
	"fr": charmap.Windows1252,
	"it": charmap.Windows1252,
	"nl": charmap.Windows1252,
	"pt": charmap.Windows1252,
	"ru": charmap.Windows1251,
	"ja": japanese.ShiftJIS,
	"ko": korean.EUCKR,
	"zh": simplifiedchinese.GBK,
}

// Languages returns the supported language codes, sorted.
func Languages() []string {
	langs := make([]string, 0, len(codepages))
	for lang := range codepages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Codepage returns the text encoding used by the AoC engine for a language.
func Codepage(lang string) (encoding.Encoding, error) {
	enc, ok := codepages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	return enc, nil
}

// Encode renders the table as language.ini content. Characters the codepage
// cannot represent are replaced.
func Encode(t *genie.StringTable, lang string) ([]byte, error) {
	enc, err := Codepage(lang)
	if err != nil {
		return nil, err
	}

	// One plain "id=text" line per string, read verbatim by the engine patch.
	var buf bytes.Buffer
	for _, id := range t.IDs() {
		text, _ := t.Get(id)
		fmt.Fprintf(&buf, "%d=%s\r\n", id, escape(text))
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encode %s strings: %w", lang, err)
	}
	return out, nil
}

// Write encodes the table into dir/language.ini.
func Write(dir string, t *genie.StringTable, lang string) error {
	data, err := Encode(t, lang)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0644); err != nil {
		return fmt.Errorf("write language.ini: %w", err)
	}
	return nil
}

// Decode parses language.ini content written in the codepage of lang.
// Whitespace around values is not preserved.
func Decode(data []byte, lang string) (*genie.StringTable, error) {
	enc, err := Codepage(lang)
	if err != nil {
		return nil, err
	}
	text, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s strings: %w", lang, err)
	}

	cfg, err := ini.LoadSources(loadOptions, text)
	if err != nil {
		return nil, fmt.Errorf("parse language.ini: %w", err)
	}
	t := genie.NewStringTable()
	for _, key := range cfg.Section("").Keys() {
		id, err := strconv.ParseInt(key.Name(), 10, 32)
		if err != nil {
			continue
		}
		t.Set(int32(id), unescape(key.Value()))
	}
	return t, nil
}

var (
	escaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", "")
	unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n")
)

func escape(s string) string   { return escaper.Replace(s) }
func unescape(s string) string { return unescaper.Replace(s) }
