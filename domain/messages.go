package domain

import (
	"github.com/gogo/protobuf/proto"
)

// Persisted records.  The struct tags carry the wire layout, gogo/protobuf
// encodes them reflectively so there is no generated code to keep in sync.
//
// NB: Every field of these structs must carry a protobuf tag, the unmarshaler
// refuses untagged fields.

type Language struct {
	Code string `protobuf:"bytes,1,opt,name=code,proto3" json:"code"`
	Name string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
}

func (m *Language) Reset()         { *m = Language{} }
func (m *Language) String() string { return proto.CompactTextString(m) }
func (*Language) ProtoMessage()    {}

type Label struct {
	Text       string   `protobuf:"bytes,1,opt,name=text,proto3" json:"text"`
	Language   string   `protobuf:"bytes,2,opt,name=language,proto3" json:"language"`
	ConceptIDs []uint64 `protobuf:"varint,3,rep,packed,name=concept_ids,json=conceptIds,proto3" json:"concept_ids,omitempty"`
}

func (m *Label) Reset()         { *m = Label{} }
func (m *Label) String() string { return proto.CompactTextString(m) }
func (*Label) ProtoMessage()    {}

type Concept struct {
	ID         uint64 `protobuf:"varint,1,opt,name=id,proto3" json:"id"`
	Text       string `protobuf:"bytes,2,opt,name=text,proto3" json:"text"`
	Language   string `protobuf:"bytes,3,opt,name=language,proto3" json:"language"`
	SenseLabel string `protobuf:"bytes,4,opt,name=sense_label,json=senseLabel,proto3" json:"sense_label,omitempty"`
}

func (m *Concept) Reset()         { *m = Concept{} }
func (m *Concept) String() string { return proto.CompactTextString(m) }
func (*Concept) ProtoMessage()    {}

type Relation struct {
	Name      string `protobuf:"bytes,1,opt,name=name,proto3" json:"name"`
	Symmetric bool   `protobuf:"varint,2,opt,name=symmetric,proto3" json:"symmetric"`
}

func (m *Relation) Reset()         { *m = Relation{} }
func (m *Relation) String() string { return proto.CompactTextString(m) }
func (*Relation) ProtoMessage()    {}

type Source struct {
	Contributor string `protobuf:"bytes,1,opt,name=contributor,proto3" json:"contributor,omitempty"`
	Process     string `protobuf:"bytes,2,opt,name=process,proto3" json:"process,omitempty"`
	Activity    string `protobuf:"bytes,3,opt,name=activity,proto3" json:"activity,omitempty"`
}

func (m *Source) Reset()         { *m = Source{} }
func (m *Source) String() string { return proto.CompactTextString(m) }
func (*Source) ProtoMessage()    {}

// EdgeMetadata is the "etc" column of an assertion.  Raw keeps the original
// JSON document so that fields without a dedicated slot are not lost.
type EdgeMetadata struct {
	Dataset     string    `protobuf:"bytes,1,opt,name=dataset,proto3" json:"dataset,omitempty"`
	License     string    `protobuf:"bytes,2,opt,name=license,proto3" json:"license,omitempty"`
	Weight      float64   `protobuf:"fixed64,3,opt,name=weight,proto3" json:"weight"`
	Sources     []*Source `protobuf:"bytes,4,rep,name=sources,proto3" json:"sources,omitempty"`
	SurfaceText string    `protobuf:"bytes,5,opt,name=surface_text,json=surfaceText,proto3" json:"surface_text,omitempty"`
	Raw         string    `protobuf:"bytes,6,opt,name=raw,proto3" json:"-"`
}

func (m *EdgeMetadata) Reset()         { *m = EdgeMetadata{} }
func (m *EdgeMetadata) String() string { return proto.CompactTextString(m) }
func (*EdgeMetadata) ProtoMessage()    {}

type Edge struct {
	ID       uint64        `protobuf:"varint,1,opt,name=id,proto3" json:"id"`
	URI      string        `protobuf:"bytes,2,opt,name=uri,proto3" json:"uri"`
	Relation string        `protobuf:"bytes,3,opt,name=relation,proto3" json:"relation"`
	StartID  uint64        `protobuf:"varint,4,opt,name=start_id,json=startId,proto3" json:"start_id"`
	EndID    uint64        `protobuf:"varint,5,opt,name=end_id,json=endId,proto3" json:"end_id"`
	Etc      *EdgeMetadata `protobuf:"bytes,6,opt,name=etc,proto3" json:"etc,omitempty"`
}

func (m *Edge) Reset()         { *m = Edge{} }
func (m *Edge) String() string { return proto.CompactTextString(m) }
func (*Edge) ProtoMessage()    {}

// BuildInfo describes the ingestion run which produced a store.
type BuildInfo struct {
	ID           string   `protobuf:"bytes,1,opt,name=id,proto3" json:"id"`
	Source       string   `protobuf:"bytes,2,opt,name=source,proto3" json:"source"`
	StartedAt    int64    `protobuf:"varint,3,opt,name=started_at,json=startedAt,proto3" json:"started_at"`
	FinishedAt   int64    `protobuf:"varint,4,opt,name=finished_at,json=finishedAt,proto3" json:"finished_at"`
	Languages    []string `protobuf:"bytes,5,rep,name=languages,proto3" json:"languages,omitempty"`
	LinesRead    uint64   `protobuf:"varint,6,opt,name=lines_read,json=linesRead,proto3" json:"lines_read"`
	EdgesWritten uint64   `protobuf:"varint,7,opt,name=edges_written,json=edgesWritten,proto3" json:"edges_written"`
	EdgesSkipped uint64   `protobuf:"varint,8,opt,name=edges_skipped,json=edgesSkipped,proto3" json:"edges_skipped"`
	Duplicates   uint64   `protobuf:"varint,9,opt,name=duplicates,proto3" json:"duplicates"`
	Concepts     uint64   `protobuf:"varint,10,opt,name=concepts,proto3" json:"concepts"`
	Labels       uint64   `protobuf:"varint,11,opt,name=labels,proto3" json:"labels"`
}

func (m *BuildInfo) Reset()         { *m = BuildInfo{} }
func (m *BuildInfo) String() string { return proto.CompactTextString(m) }
func (*BuildInfo) ProtoMessage()    {}
