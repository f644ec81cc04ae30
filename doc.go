/*
Package updock checks container image tag references against the tags
published in a registry and classifies available updates as breaking
or compatible, driven by a user-authored pattern.

The engine is network-agnostic: patterns, matching, and classification
operate purely on tag strings. Typical flow:

 1. Compile a pattern with CompilePattern ("<>" marks a non-breaking
    numeric slot, "<!>" a breaking one, everything else is literal).
 2. Fetch the image's published tags elsewhere (e.g., via the registry
    subpackage).
 3. Call Pattern.Classify with the current tag and the fetched tags.
 4. Render the resulting UpdateSet (e.g., via the report subpackage).

Classification notes:
  - Significance is positional: the leftmost slot that differs decides
    whether an update is breaking or compatible.
  - Candidates equal to or older than the current version are not
    updates and are dropped.
  - Candidate tags that do not match the pattern are counted and
    skipped, never an error; only the current tag is required to match.

Checker wraps the engine with registry fetching, per-image timeouts,
and a bounded worker pool for checking many images at once.

Usage example:

	pattern, err := updock.CompilePattern(`<!>.<>.<>`)
	if err != nil {
		log.Fatal(err)
	}

	tags := []string{"1.4.13", "1.6.12", "2.4.12", "1.4.11", "latest"}

	updates, err := pattern.Classify("1.4.12", tags)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(updates.Breaking)   // [2.4.12]
	fmt.Println(updates.Compatible) // [1.6.12 1.4.13]
	fmt.Println(updates.Unmatched)  // 1
*/
package updock
