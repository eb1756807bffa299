// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrFolderNotFound is returned when the folder to patch is not a directory
	ErrFolderNotFound = errors.Base("folder not found")

	// ErrInputNotFound is returned when the layout input is missing or not a
	// regular file
	ErrInputNotFound = errors.Base("file not found")
)

// 🎯 Operation is one unit of work run by a Runner
type Operation interface {
	// Execute runs the operation
	Execute(ctx context.Context) error
}

// OperationFunc adapts a plain function to an Operation
type OperationFunc func(ctx context.Context) error

// Execute calls f
func (f OperationFunc) Execute(ctx context.Context) error {
	return f(ctx)
}
