package plan

import "errors"

var (
	// ErrCycleRejected indicates a move would place a node under itself.
	ErrCycleRejected = errors.New("move would create a cycle")

	// ErrInconsistentState indicates the tree no longer matches what a
	// recorded operation expects, i.e. it was mutated out of band.
	ErrInconsistentState = errors.New("tree state inconsistent with recorded operation")

	// ErrNotAttached indicates the target node is not where it was expected.
	ErrNotAttached = errors.New("node not attached")

	// ErrAlreadyAttached indicates a node id is already present in the tree.
	ErrAlreadyAttached = errors.New("node already attached")

	// ErrNodeNotFound indicates no node with the given id exists in the tree.
	ErrNodeNotFound = errors.New("node not found")

	// ErrHierarchyRejected indicates the parent kind cannot hold the child kind.
	ErrHierarchyRejected = errors.New("hierarchy does not accept child")

	// ErrInvalidName indicates an empty name on a non-root node.
	ErrInvalidName = errors.New("name cannot be empty")

	// ErrWorkPackageNotFound indicates no work package with the given seq exists.
	ErrWorkPackageNotFound = errors.New("work package not found")

	// ErrWrongKind indicates the operation does not apply to the node's kind.
	ErrWrongKind = errors.New("operation not supported for node kind")
)
