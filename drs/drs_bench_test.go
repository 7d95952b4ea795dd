// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package drs

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// benchArchive writes an archive with n graphics of size bytes each.
func benchArchive(b *testing.B, n, size int) string {
	b.Helper()
	a := NewStagingArchive("graphics")
	payload := make([]byte, size)
	for i := 0; i < n; i++ {
		payload[0] = byte(i)
		if err := a.Set(EntryName(int32(i), "slp"), append([]byte(nil), payload...)); err != nil {
			b.Fatal(err)
		}
	}
	path := filepath.Join(b.TempDir(), "graphics.drs")
	if err := Repack(a, path); err != nil {
		b.Fatal(err)
	}
	return path
}

// BenchmarkExtract benchmarks extraction with different worker counts
func BenchmarkExtract(b *testing.B) {
	path := benchArchive(b, 2000, 4096)
	for _, workers := range []int{1, 4, 16} {
		b.Run("workers="+strconv.Itoa(workers), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Extract(path, workers); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRepack benchmarks writing an extracted archive
func BenchmarkRepack(b *testing.B) {
	a, err := Extract(benchArchive(b, 2000, 4096), 0)
	if err != nil {
		b.Fatal(err)
	}
	dst := filepath.Join(b.TempDir(), "out.drs")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Repack(a, dst); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkChainResolve benchmarks override lookups with the cached file map
func BenchmarkChainResolve(b *testing.B) {
	tmpDir := b.TempDir()

	var dirs []string
	for i := 0; i < 5; i++ {
		dir := filepath.Join(tmpDir, "set_"+strconv.Itoa(i))
		if err := os.MkdirAll(dir, 0755); err != nil {
			b.Fatal(err)
		}
		for j := 0; j < 20; j++ {
			name := EntryName(int32(i*100+j), "slp")
			if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
				b.Fatal(err)
			}
		}
		dirs = append(dirs, dir)
	}
	chain := NewChain(dirs...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chain.Resolve("0.slp")
		chain.Resolve("419.SLP")
		chain.Resolve("99999.slp")
	}
}
