package errors_test

import (
	"fmt"

	"github.com/agentstation/panmap/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := &errors.NotFoundError{
		Resource: "sample",
		ID:       "SRR000001",
	}

	if errors.IsNotFound(err) {
		fmt.Println("Sample not found")
	}

	// Output: Sample not found
}

// Example_retrievalError shows how callers detect a terminal download failure.
func Example_retrievalError() {
	var err error = errors.NewRetrievalError("SRR000001", "SRR000001_2.fastq.gz", 15, fmt.Errorf("timeout"))

	if errors.IsRetrievalExhausted(err) {
		fmt.Println("giving up on SRR000001")
	}

	// Output: giving up on SRR000001
}

// Example_columnError shows the hard failure raised for malformed reference tables.
func Example_columnError() {
	err := errors.NewColumnError("reference catalog", "", []string{"Genus"}, []string{"Species"})
	fmt.Println(err)

	// Output: reference catalog is missing required column(s) "Genus" (found: "Species")
}
