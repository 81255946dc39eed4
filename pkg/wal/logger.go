package wal

import (
	"io"
	"os"
	"sync"

	"github.com/cuemby/quill/pkg/bin"
	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/rs/zerolog"
)

const (
	foldSeed        = 13331
	xChecksumLen    = 4
	recordSizeLen   = 4
	recordCsumLen   = 4
	recordHeaderLen = recordSizeLen + recordCsumLen
)

// fold computes the running checksum of data seeded from acc, used both
// for individual record checksums (acc=0) and the file-global xchecksum
// (acc=previous xchecksum).
func fold(acc uint32, data []byte) uint32 {
	for _, b := range data {
		acc = acc*foldSeed + uint32(b)
	}
	return acc
}

// Logger is the write-ahead log. Append is safe for concurrent use;
// Rewind/Next are meant for single-threaded sequential recovery scans.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	size      int64 // current file size, tracked to avoid repeated Seek/Stat
	xChecksum uint32

	readPos int64

	log zerolog.Logger
}

// Open opens (creating if absent) the WAL file at path, validating the
// global checksum and truncating any corrupt tail.
func Open(path string) (*Logger, error) {
	lg := log.WithComponent("wal")

	_, statErr := os.Stat(path)
	create := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, dberrors.Storage(dberrors.ErrFileCannotRW, err.Error())
	}

	l := &Logger{file: f, log: lg}

	if create {
		if err := l.writeXChecksum(0); err != nil {
			f.Close()
			return nil, err
		}
		l.size = xChecksumLen
		return l, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dberrors.Storage(dberrors.ErrBadLogFile, err.Error())
	}
	fileSize := info.Size()
	if fileSize < xChecksumLen {
		f.Close()
		return nil, dberrors.Storage(dberrors.ErrBadLogFile, "file shorter than xchecksum header")
	}

	storedXChecksum, err := l.readXChecksum()
	if err != nil {
		f.Close()
		return nil, err
	}

	running := uint32(0)
	pos := int64(xChecksumLen)
	for {
		data, recLen, ok := l.readRecordAt(pos, fileSize)
		if !ok {
			break
		}
		running = fold(running, data)
		pos += recLen
	}

	if pos != fileSize || running != storedXChecksum {
		lg.Warn().Int64("valid_bytes", pos).Int64("file_size", fileSize).
			Msg("truncating corrupt WAL tail")
		if err := f.Truncate(pos); err != nil {
			f.Close()
			return nil, dberrors.Storage(dberrors.ErrBadLogFile, err.Error())
		}
	}

	l.size = pos
	l.xChecksum = running
	if err := l.writeXChecksum(running); err != nil {
		f.Close()
		return nil, err
	}

	return l, nil
}

// readRecordAt reads and validates one record starting at pos. ok is
// false if there is not a complete, checksum-valid record there (end of
// log / bad tail).
func (l *Logger) readRecordAt(pos, fileSize int64) (data []byte, recLen int64, ok bool) {
	if pos+recordHeaderLen > fileSize {
		return nil, 0, false
	}
	header := make([]byte, recordHeaderLen)
	if _, err := l.file.ReadAt(header, pos); err != nil {
		return nil, 0, false
	}
	size := bin.BytesToUint32(header[:recordSizeLen])
	checksum := bin.BytesToUint32(header[recordSizeLen:])

	if pos+recordHeaderLen+int64(size) > fileSize {
		return nil, 0, false
	}
	body := make([]byte, size)
	if _, err := l.file.ReadAt(body, pos+recordHeaderLen); err != nil {
		return nil, 0, false
	}
	if fold(0, body) != checksum {
		return nil, 0, false
	}
	return body, recordHeaderLen + int64(size), true
}

func (l *Logger) readXChecksum() (uint32, error) {
	buf := make([]byte, xChecksumLen)
	if _, err := l.file.ReadAt(buf, 0); err != nil {
		return 0, dberrors.Storage(dberrors.ErrBadLogFile, err.Error())
	}
	return bin.BytesToUint32(buf), nil
}

func (l *Logger) writeXChecksum(v uint32) error {
	if _, err := l.file.WriteAt(bin.Uint32ToBytes(v), 0); err != nil {
		return dberrors.Storage(dberrors.ErrBadLogFile, err.Error())
	}
	return l.file.Sync()
}

// Append writes data as a new record at the end of the log, updates and
// fsyncs the global checksum, and returns once durable.
func (l *Logger) Append(data []byte) error {
	timer := metricsTimer()
	l.mu.Lock()
	defer l.mu.Unlock()

	checksum := fold(0, data)
	record := make([]byte, recordHeaderLen+len(data))
	copy(record[:recordSizeLen], bin.Uint32ToBytes(uint32(len(data))))
	copy(record[recordSizeLen:recordHeaderLen], bin.Uint32ToBytes(checksum))
	copy(record[recordHeaderLen:], data)

	if _, err := l.file.WriteAt(record, l.size); err != nil {
		return dberrors.Storage(dberrors.ErrBadLogFile, err.Error())
	}

	newXChecksum := fold(l.xChecksum, data)
	if err := l.writeXChecksum(newXChecksum); err != nil {
		return err
	}
	if err := l.file.Sync(); err != nil {
		return dberrors.Storage(dberrors.ErrBadLogFile, err.Error())
	}

	l.size += int64(len(record))
	l.xChecksum = newXChecksum
	timer.observe()
	metrics.WALBytesWritten.Add(float64(len(record)))
	return nil
}

// Rewind positions the scan cursor at the first record.
func (l *Logger) Rewind() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readPos = xChecksumLen
}

// Next returns the next record's body during a sequential scan. ok is
// false once the end of the valid log is reached.
func (l *Logger) Next() (data []byte, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	body, recLen, valid := l.readRecordAt(l.readPos, l.size)
	if !valid {
		return nil, false
	}
	l.readPos += recLen
	return body, true
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	return l.file.Close()
}

func metricsTimer() *timerHandle {
	return &timerHandle{t: metrics.NewTimer()}
}

type timerHandle struct{ t *metrics.Timer }

func (h *timerHandle) observe() { h.t.ObserveDuration(metrics.WALAppendDuration) }
