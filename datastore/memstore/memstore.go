//  Copyright 2024-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package memstore is an in-memory keyspace. Documents are validated
JSON, compressed at rest and spread over shards by the SipHash of
their key. Every fetch decodes a private copy of the document, which
is handed out as an EXTERNAL value.
*/
package memstore

import (
	"encoding/hex"
	"sync"

	atomic "github.com/couchbase/go-couchbase/platform"
	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"

	"github.com/couchbaselabs/rowpipe/datastore"
	"github.com/couchbaselabs/rowpipe/errors"
	"github.com/couchbaselabs/rowpipe/logging"
	"github.com/couchbaselabs/rowpipe/value"
)

const _DEFAULT_SHARDS = 16

// fixed keys: shard placement only needs to be stable within a process
const (
	_SIP_K0 = 0x0706050403020100
	_SIP_K1 = 0x0f0e0d0c0b0a0908
)

type entry struct {
	data []byte
	etag string
}

type shard struct {
	sync.RWMutex
	docs map[string]*entry
}

type keyspace struct {
	name   string
	codec  codec
	shards []*shard
	count  atomic.AlignedInt64
	closed int32
}

/*
NewKeyspace creates an empty keyspace. compression is one of "none",
"snappy" (the default), "s2" or "zstd".
*/
func NewKeyspace(name string, shards int, compression string) (datastore.Keyspace, errors.Error) {
	if shards <= 0 {
		shards = _DEFAULT_SHARDS
	}
	c, err := newCodec(compression)
	if err != nil {
		return nil, err
	}
	rv := &keyspace{
		name:   name,
		codec:  c,
		shards: make([]*shard, shards),
	}
	for i := range rv.shards {
		rv.shards[i] = &shard{docs: make(map[string]*entry)}
	}
	logging.Infop("memstore keyspace created", logging.Pair{Name: "name", Value: name},
		logging.Pair{Name: "shards", Value: shards}, logging.Pair{Name: "compression", Value: c.Name()})
	return rv, nil
}

// Compressions lists the supported compression names.
func Compressions() []string {
	return append([]string(nil), _CODECS...)
}

func (this *keyspace) Name() string {
	return this.name
}

func (this *keyspace) shard(key string) *shard {
	h := siphash.Hash(_SIP_K0, _SIP_K1, []byte(key))
	return this.shards[h%uint64(len(this.shards))]
}

func (this *keyspace) isClosed() bool {
	return atomic.LoadInt32(&this.closed) == 1
}

func (this *keyspace) Count() (int64, errors.Error) {
	if this.isClosed() {
		return 0, errors.NewDatastoreClosedError(this.name)
	}
	return atomic.LoadInt64(&this.count), nil
}

func (this *keyspace) Fetch(keys []string) (datastore.Pairs, errors.Error) {
	rv := make(datastore.Pairs, 0, len(keys))
	for _, k := range keys {
		v, err := this.FetchOne(k)
		if err != nil {
			if err.Code() == errors.E_DATASTORE_KEY_NOT_FOUND {
				continue
			}
			return nil, err
		}
		rv = append(rv, datastore.Pair{Key: k, Value: v})
	}
	return rv, nil
}

func (this *keyspace) FetchOne(key string) (value.Value, errors.Error) {
	if this.isClosed() {
		return nil, errors.NewDatastoreClosedError(this.name)
	}
	s := this.shard(key)
	s.RLock()
	e, ok := s.docs[key]
	s.RUnlock()
	if !ok {
		return nil, errors.NewKeyNotFoundError(this.name, key)
	}

	raw, err := this.codec.Decode(e.data)
	if err != nil {
		return nil, errors.NewDocumentDecodeError(key, err)
	}
	return value.NewParsedValue(raw), nil
}

func (this *keyspace) Upsert(pairs datastore.Pairs) (datastore.Pairs, errors.Error) {
	if this.isClosed() {
		return nil, errors.NewDatastoreClosedError(this.name)
	}
	for _, p := range pairs {
		if p.Value == nil || p.Value.Type() == value.MISSING || p.Value.Type() == value.BINARY {
			return nil, errors.NewDocumentEncodeError(p.Key, nil)
		}
		raw, err := p.Value.MarshalJSON()
		if err != nil {
			return nil, errors.NewDocumentEncodeError(p.Key, err)
		}
		sum := blake2b.Sum256(raw)
		e := &entry{
			data: this.codec.Encode(raw),
			etag: hex.EncodeToString(sum[:16]),
		}

		s := this.shard(p.Key)
		s.Lock()
		_, exists := s.docs[p.Key]
		s.docs[p.Key] = e
		s.Unlock()
		if !exists {
			atomic.AddInt64(&this.count, 1)
		}
	}
	return pairs, nil
}

func (this *keyspace) Delete(keys []string) errors.Error {
	if this.isClosed() {
		return errors.NewDatastoreClosedError(this.name)
	}
	for _, k := range keys {
		s := this.shard(k)
		s.Lock()
		_, exists := s.docs[k]
		delete(s.docs, k)
		s.Unlock()
		if exists {
			atomic.AddInt64(&this.count, -1)
		}
	}
	return nil
}

func (this *keyspace) Etag(key string) (string, errors.Error) {
	if this.isClosed() {
		return "", errors.NewDatastoreClosedError(this.name)
	}
	s := this.shard(key)
	s.RLock()
	defer s.RUnlock()
	e, ok := s.docs[key]
	if !ok {
		return "", errors.NewKeyNotFoundError(this.name, key)
	}
	return e.etag, nil
}

func (this *keyspace) Close() {
	atomic.StoreInt32(&this.closed, 1)
	if z, ok := this.codec.(*zstdCodec); ok {
		z.Close()
	}
	for _, s := range this.shards {
		s.Lock()
		s.docs = make(map[string]*entry)
		s.Unlock()
	}
	atomic.StoreInt64(&this.count, 0)
}
