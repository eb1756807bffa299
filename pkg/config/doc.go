/*
Package config loads patch sets: ordered lists of target files and the patches
applied to each.

	            +-------------+
	            |  PatchSet   |
	            |  (targets)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+  +----+----+  +----+----+
	|   YAML   |  |   HCL   |  |  JSON   |
	|  Parser  |  | Parser  |  | Parser  |
	+----------+  +---------+  +---------+

🎯 Purpose:
- Picks a parser from the file extension
- Validates target paths, patch ids, search text and modes
- Ships the ComplianceOS patch set built in (see Default)

🔍 Example:

	ps, err := config.Load(ctx, "patches.yaml")
	if errors.Is(err, config.ErrInvalid) {
		// bad ids, paths or modes
	}
*/
package config
