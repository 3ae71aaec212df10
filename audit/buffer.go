package audit

import (
	"errors"
	"os"

	"github.com/gammazero/deque"
	log "github.com/sirupsen/logrus"

	"orderbot/models"
)

var ErrDumpTooBig = errors.New("dump file has exceeded it's max size! Stopping the spill")

// Dumper persists spilled records so nothing is lost when the sink is down.
type Dumper interface {
	Dump(buffer *deque.Deque[models.AuditRecord]) error
	GetPath() string
	GetMaxSize() int64
}

type SimpleDumper struct {
	file    string
	maxSize int64
}

func NewSimpleDumper(path string, maxSize int64) Dumper {
	return &SimpleDumper{file: path, maxSize: maxSize}
}

func (d *SimpleDumper) GetMaxSize() int64 {
	return d.maxSize
}

func (d *SimpleDumper) GetPath() string {
	return d.file
}

func (d *SimpleDumper) Dump(buffer *deque.Deque[models.AuditRecord]) error {
	file, err := os.OpenFile(d.file, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		return err
	}
	info, _ := file.Stat()
	// info.Size() is in bytes, so to convert to MB we divide twice
	if info.Size()/1024/1024 > d.maxSize {
		file.Close()
		return ErrDumpTooBig
	}
	defer file.Close()
	for i := 0; i < buffer.Len(); i++ {
		line, err := encodeRecord(buffer.At(i))
		if err != nil {
			return err
		}
		if _, err = file.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// SpillBuffer holds records that could not be appended and dumps them to
// disk when the buffer fills up or the run finishes.
type SpillBuffer struct {
	buf    deque.Deque[models.AuditRecord]
	dumper Dumper
	maxLen int
	Logger *log.Logger
}

func NewSpillBuffer(d Dumper, maxLen int, logger *log.Logger) *SpillBuffer {
	return &SpillBuffer{dumper: d, maxLen: maxLen, Logger: logger}
}

func (b *SpillBuffer) Len() int {
	return b.buf.Len()
}

func (b *SpillBuffer) Append(recs ...models.AuditRecord) {
	if b.buf.Len()+len(recs) >= b.maxLen {
		b.Logger.Traceln("dumping buffer because it exceeded max size")
		b.Dump()
	}
	for _, r := range recs {
		b.buf.PushBack(r)
	}
}

func (b *SpillBuffer) Dump() {
	if b.buf.Len() == 0 {
		return
	}
	err := b.dumper.Dump(&b.buf)
	if errors.Is(err, ErrDumpTooBig) {
		b.Logger.Errorf("%v File=%v MaxSize=%v", err, b.dumper.GetPath(), b.dumper.GetMaxSize())
	} else if err != nil {
		b.Logger.Errorln(err)
	}
	b.buf = deque.Deque[models.AuditRecord]{}
}
