// Package worker provides a worker pool for parallel batch validation.
//
// The worker pool enables efficient validation of many implementation
// records in parallel, taking advantage of multi-core processors.
//
// Example usage:
//
//	// Create a worker pool with 4 workers
//	pool := worker.NewPool(validator.Validate, 4)
//	defer pool.Close()
//
//	// Submit jobs
//	for _, record := range records {
//	    pool.Submit(worker.NewJob(record))
//	}
//
//	// Collect results
//	for result := range pool.Results() {
//	    if result.Error != nil {
//	        // Handle error
//	    }
//	    // Process result.Result
//	}
package worker
