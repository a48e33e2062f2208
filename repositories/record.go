package repositories

import (
	"encoding/json"
	"fmt"
	"strconv"

	"game-lab/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Records are stored as google.protobuf.Struct values:
//
//	creation: {kind:"create", seed:"<int64>", user:{id,name}, args:<json>}
//	command:  {kind:"command", method:"...", user:{id,name}, args:<json>}
//
// The seed is kept as a string so it survives the float64 number encoding of Struct.
const (
	fieldKind   = "kind"
	fieldSeed   = "seed"
	fieldUser   = "user"
	fieldMethod = "method"
	fieldArgs   = "args"
)

var marshalOptions = proto.MarshalOptions{Deterministic: true}

func EncodeCreation(rec domain.CreationRecord) ([]byte, error) {
	args, err := argsValue(rec.Args)
	if err != nil {
		return nil, err
	}
	return marshalOptions.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		fieldKind: structpb.NewStringValue(string(domain.RecordCreation)),
		fieldSeed: structpb.NewStringValue(strconv.FormatInt(rec.Seed, 10)),
		fieldUser: userValue(rec.User),
		fieldArgs: args,
	}})
}

func EncodeCommand(rec domain.CommandRecord) ([]byte, error) {
	args, err := argsValue(rec.Args)
	if err != nil {
		return nil, err
	}
	return marshalOptions.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		fieldKind:   structpb.NewStringValue(string(domain.RecordCommand)),
		fieldMethod: structpb.NewStringValue(rec.Method),
		fieldUser:   userValue(rec.User),
		fieldArgs:   args,
	}})
}

// DecodeRecord returns either a domain.CreationRecord or a domain.CommandRecord.
func DecodeRecord(raw []byte) (any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	fields := s.GetFields()
	user := toUser(fields[fieldUser])
	args, err := argsJSON(fields[fieldArgs])
	if err != nil {
		return nil, err
	}

	switch kind := domain.RecordKind(fields[fieldKind].GetStringValue()); kind {
	case domain.RecordCreation:
		seed, err := strconv.ParseInt(fields[fieldSeed].GetStringValue(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse seed: %w", err)
		}
		return domain.CreationRecord{Seed: seed, User: user, Args: args}, nil
	case domain.RecordCommand:
		method := fields[fieldMethod].GetStringValue()
		if method == "" {
			return nil, fmt.Errorf("command record without method")
		}
		return domain.CommandRecord{Method: method, User: user, Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

func userValue(u domain.User) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":   structpb.NewStringValue(u.ID),
		"name": structpb.NewStringValue(u.Name),
	}})
}

func toUser(v *structpb.Value) domain.User {
	fields := v.GetStructValue().GetFields()
	return domain.User{
		ID:   fields["id"].GetStringValue(),
		Name: fields["name"].GetStringValue(),
	}
}

func argsValue(args json.RawMessage) (*structpb.Value, error) {
	if len(args) == 0 {
		return structpb.NewNullValue(), nil
	}
	var v structpb.Value
	if err := protojson.Unmarshal(args, &v); err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	return &v, nil
}

func argsJSON(v *structpb.Value) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}
	raw, err := protojson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	return raw, nil
}
