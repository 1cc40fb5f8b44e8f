package tinybasic

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"sort"
	"sync"
	"time"
)

// scriptConsole feeds scripted keys and records everything printed.
type scriptConsole struct {
	input []byte
	out   bytes.Buffer
}

func (c *scriptConsole) GetChar() (byte, bool) {
	if len(c.input) == 0 {
		return 0, false
	}
	ch := c.input[0]
	c.input = c.input[1:]
	return ch, true
}

func (c *scriptConsole) PutChar(ch byte) {
	c.out.WriteByte(ch)
}

// WaitKey ends the input once the script is used up.
func (c *scriptConsole) WaitKey(ctx context.Context) error {
	if len(c.input) == 0 {
		return io.EOF
	}
	return nil
}

// takeOutput returns and clears the recorded output.
func (c *scriptConsole) takeOutput() string {
	s := c.out.String()
	c.out.Reset()
	return s
}

// memStorage keeps files in memory.
type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (m *memStorage) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *memStorage) Open(name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Create(name string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; ok {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
	}
	return &memFile{storage: m, name: name}, nil
}

type memFile struct {
	bytes.Buffer
	storage *memStorage
	name    string
}

func (f *memFile) Close() error {
	f.storage.mu.Lock()
	defer f.storage.mu.Unlock()
	f.storage.files[f.name] = append([]byte(nil), f.Bytes()...)
	return nil
}

var testLimits = Limits{
	OperandStackDepth: DefaultOperandStackDepth,
	CallStackDepth:    MaxGosubDepth,
	NameWidth:         DefaultNameWidth,
	LineLength:        DefaultLineLength,
	MaxArrayCells:     DefaultMaxArrayCells,
	PollInterval:      time.Millisecond,
	Banner:            true,
}

// newTestBASIC returns an interpreter over a scripted console and in-memory storage.
func newTestBASIC(input string) (*TinyBASIC, *scriptConsole, *memStorage) {
	console := &scriptConsole{input: []byte(input)}
	storage := newMemStorage()
	return NewTinyBASIC(console, storage, testLimits), console, storage
}
