package scanner

import (
	"io/fs"
	"os"
	"time"
)

type fileStat struct {
	size  int64
	mtime time.Time
	mode  fs.FileMode
}

// statCache remembers os.Stat results for the duration of one scan. The
// filter and the mtime comparison both need a file's stat; this keeps it to
// one system call per file. It is not safe for concurrent use.
type statCache struct {
	entries map[string]fileStat
	statFn  func(string) (fs.FileInfo, error)
	hits    int
	misses  int
}

func newStatCache() *statCache {
	return &statCache{
		entries: make(map[string]fileStat),
		statFn:  os.Stat,
	}
}

func (c *statCache) stat(path string) (fileStat, error) {
	if st, ok := c.entries[path]; ok {
		c.hits++
		return st, nil
	}
	c.misses++

	info, err := c.statFn(path)
	if err != nil {
		return fileStat{}, err
	}
	st := fileStat{
		size:  info.Size(),
		mtime: info.ModTime(),
		mode:  info.Mode(),
	}
	c.entries[path] = st
	return st, nil
}

func (c *statCache) len() int {
	return len(c.entries)
}

// reset drops every entry so a later scan sees fresh file system state
func (c *statCache) reset() {
	c.entries = make(map[string]fileStat)
	c.hits = 0
	c.misses = 0
}
