package ufs

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v3"
	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"
)

// Snapshot is a diagnostic, compressed export of the live file table. ufs
// carries no persistence, so a snapshot is never reloaded into an FS —
// it exists purely for offline
// inspection, generalizing userfs.c's debug_print_files into a structured,
// portable artifact. Encoding is hand-written against msgp's Append/Read
// primitives rather than codegen'd, since Record's shape is small and
// stable enough not to warrant a generated (de)serializer.
func (fs *FS) Snapshot() ([]byte, error) {
	var recs []Record
	for f := fs.table.head; f != nil; f = f.next {
		recs = append(recs, Record{Name: f.name, Size: f.size, Refs: f.refs, Ghost: f.ghost})
	}

	raw := encodeRecords(recs)

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, errors.Wrap(err, "lz4 compress snapshot")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "lz4 close snapshot")
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot reverses Snapshot for offline tooling; neither FS nor any
// command in this module calls it.
func DecodeSnapshot(compressed []byte) ([]Record, error) {
	zr := lz4.NewReader(bytes.NewReader(compressed))
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 decompress snapshot")
	}
	return decodeRecords(raw)
}

func encodeRecords(recs []Record) []byte {
	b := msgp.AppendArrayHeader(nil, uint32(len(recs)))
	for _, r := range recs {
		b = msgp.AppendMapHeader(b, 4)
		b = msgp.AppendString(b, "name")
		b = msgp.AppendString(b, r.Name)
		b = msgp.AppendString(b, "size")
		b = msgp.AppendInt64(b, r.Size)
		b = msgp.AppendString(b, "refs")
		b = msgp.AppendInt(b, r.Refs)
		b = msgp.AppendString(b, "ghost")
		b = msgp.AppendBool(b, r.Ghost)
	}
	return b
}

func decodeRecords(b []byte) ([]Record, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, errors.Wrap(err, "read array header")
	}
	recs := make([]Record, 0, n)
	for i := uint32(0); i < n; i++ {
		var sz uint32
		sz, b, err = msgp.ReadMapHeaderBytes(b)
		if err != nil {
			return nil, errors.Wrap(err, "read map header")
		}
		var rec Record
		for j := uint32(0); j < sz; j++ {
			var key string
			key, b, err = msgp.ReadStringBytes(b)
			if err != nil {
				return nil, errors.Wrap(err, "read key")
			}
			switch key {
			case "name":
				rec.Name, b, err = msgp.ReadStringBytes(b)
			case "size":
				rec.Size, b, err = msgp.ReadInt64Bytes(b)
			case "refs":
				rec.Refs, b, err = msgp.ReadIntBytes(b)
			case "ghost":
				rec.Ghost, b, err = msgp.ReadBoolBytes(b)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "read value for %s", key)
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
