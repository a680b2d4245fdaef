// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ast

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// FromProtoMessage converts a generic protobuf message into a RawProblem
// using reflection, so the engine can accept an already machine-readable
// problem description (objects and initial-state facts) alongside the
// symbolic-tree parser output handled by FromParseTree. It expects msg to
// carry a repeated "objects" field of (name, type) message pairs and a
// repeated "init_true" field of (predicate, args) message pairs; any other
// shape is reported as an error rather than guessed at.
func FromProtoMessage(msg protoreflect.Message) (RawProblem, error) {
	var problem RawProblem
	fields := msg.Descriptor().Fields()

	if fd := fields.ByName("objects"); fd != nil {
		objs, err := protoObjects(msg, fd)
		if err != nil {
			return RawProblem{}, fmt.Errorf("ast: decoding objects: %w", err)
		}
		problem.Objects = objs
	}
	if fd := fields.ByName("init_true"); fd != nil {
		facts, err := protoFacts(msg, fd)
		if err != nil {
			return RawProblem{}, fmt.Errorf("ast: decoding init_true: %w", err)
		}
		problem.InitTrue = facts
	}
	return problem, nil
}

func protoObjects(msg protoreflect.Message, fd protoreflect.FieldDescriptor) ([]Object, error) {
	if !fd.IsList() || fd.Kind() != protoreflect.MessageKind {
		return nil, fmt.Errorf("objects field must be a repeated message, got %v", fd.Kind())
	}
	list := msg.Get(fd).List()
	objs := make([]Object, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		entry := list.Get(i).Message()
		nameFd := entry.Descriptor().Fields().ByName("name")
		typeFd := entry.Descriptor().Fields().ByName("type")
		if nameFd == nil || typeFd == nil {
			return nil, fmt.Errorf("object entry %d missing name/type field", i)
		}
		objs = append(objs, Object{
			ID:   i,
			Name: entry.Get(nameFd).String(),
			Type: TypeSym{Name: entry.Get(typeFd).String()},
		})
	}
	return objs, nil
}

func protoFacts(msg protoreflect.Message, fd protoreflect.FieldDescriptor) ([]SymbolicFact, error) {
	if !fd.IsList() || fd.Kind() != protoreflect.MessageKind {
		return nil, fmt.Errorf("init_true field must be a repeated message, got %v", fd.Kind())
	}
	list := msg.Get(fd).List()
	facts := make([]SymbolicFact, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		entry := list.Get(i).Message()
		predFd := entry.Descriptor().Fields().ByName("predicate")
		argsFd := entry.Descriptor().Fields().ByName("args")
		if predFd == nil || argsFd == nil {
			return nil, fmt.Errorf("fact entry %d missing predicate/args field", i)
		}
		name := entry.Get(predFd).String()
		var argList protoreflect.List
		if argsFd.IsList() {
			argList = entry.Get(argsFd).List()
		}
		bindings := make([]Binding, 0, argList.Len())
		for j := 0; j < argList.Len(); j++ {
			// Arguments are carried as object indices; the caller is
			// responsible for having assigned object IDs consistently
			// between the "objects" and "init_true" repeated fields.
			bindings = append(bindings, Bound(int(argList.Get(j).Int())))
		}
		facts = append(facts, SymbolicFact{
			Predicate: PredicateSym{Name: name, Arity: len(bindings)},
			Bindings:  bindings,
		})
	}
	return facts, nil
}
