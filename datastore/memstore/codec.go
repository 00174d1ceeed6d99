//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package memstore

import (
	"runtime"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/couchbaselabs/rowpipe/errors"
)

// codec compresses documents at rest.
type codec interface {
	Name() string
	Encode(src []byte) []byte
	Decode(src []byte) ([]byte, error)
}

type noneCodec struct{}

func (noneCodec) Name() string { return "none" }

func (noneCodec) Encode(src []byte) []byte {
	return append([]byte(nil), src...)
}

func (noneCodec) Decode(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

type snappyCodec struct{}

func (snappyCodec) Name() string { return "snappy" }

func (snappyCodec) Encode(src []byte) []byte {
	return snappy.Encode(nil, src)
}

func (snappyCodec) Decode(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}

type s2Codec struct{}

func (s2Codec) Name() string { return "s2" }

func (s2Codec) Encode(src []byte) []byte {
	return s2.Encode(nil, src)
}

func (s2Codec) Decode(src []byte) ([]byte, error) {
	return s2.Decode(nil, src)
}

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() (*zstdCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (*zstdCodec) Name() string { return "zstd" }

func (z *zstdCodec) Encode(src []byte) []byte {
	return z.enc.EncodeAll(src, nil)
}

func (z *zstdCodec) Decode(src []byte) ([]byte, error) {
	return z.dec.DecodeAll(src, nil)
}

func (z *zstdCodec) Close() {
	z.enc.Close()
	z.dec.Close()
}

var _CODECS = []string{"none", "snappy", "s2", "zstd"}

func newCodec(name string) (codec, errors.Error) {
	switch name {
	case "", "snappy":
		return snappyCodec{}, nil
	case "none":
		return noneCodec{}, nil
	case "s2":
		return s2Codec{}, nil
	case "zstd":
		z, err := newZstdCodec()
		if err != nil {
			return nil, errors.NewAdminSettingError("compression", name, err)
		}
		return z, nil
	}
	return nil, errors.NewAdminSettingError("compression", name, nil)
}
