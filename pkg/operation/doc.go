/*
Package operation drives the patch applier and the layout fixer.

	+-----------+      +-----------+      +-----------+
	|  config   | ---> | operation | ---> |  status   |
	| PatchSet  |      |   Apply   |      | backups,  |
	+-----------+      +-----+-----+      | writes    |
	                         |            +-----------+
	                   +-----+-----+
	                   |   text    |
	                   |  matcher  |
	                   +-----------+

🎯 Purpose:
- ApplyOperation walks a patch set target by target, applies every patch to
  the file content in memory and writes each file at most once
- LayoutOperation writes a copy of an HTML file with the layout blocks injected
- OperationRunner runs operations one after another

🔄 Apply flow:
 1. Resolve every target in the folder (plain paths or doublestar globs)
 2. For each file: read, back up, apply patches in order, write if changed
 3. Log the summary and a file table, then save the run log in the folder

⚡ Failures:
A patch whose search text cannot be found is logged and counted; the run goes
on. Missing optional files have their patches skipped. Only a missing folder or
a cancelled context stops an apply run.

🔍 Example:

	ctx = log.NewContext(ctx, log.New(os.Stdout, zerolog.InfoLevel))
	op := operation.NewApplyOperation(operation.ApplyOptions{
		Folder:   dir,
		PatchSet: ps,
	})
	err := operation.NewRunner(&logger).Run(ctx, op)
*/
package operation
