/*
Package status does the file system side of a patch run: reads, timestamped
backups, atomic writes, the persisted run log, and the per-file outcome table.

	            +-------------+
	            |   Manager   |
	            | (base dir)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           | Outcome |
	|  (backup, |           |  table  |
	|   write)  |           |         |
	+-----------+           +---------+

⚡ Guarantees:
- a backup is a byte-identical copy named <file>.<YYYYmmdd_HHMMSS>.bak
- a write goes through a temp file and a rename, and only when content changed
- paths are relative to the base directory; targets may be doublestar globs
*/
package status
