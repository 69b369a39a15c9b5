package mcpserver

// StorageContract describes the path rules and collision semantics that
// LLM consumers should follow when calling the storage tools.
const StorageContract = `# storagekit Storage Contract

Every tool operates on items below a single storage root. Items are either
files or folders.

## Paths

1. Paths are **relative to the storage root** and use forward slashes
   (` + "`" + `reports/2025/summary.txt` + "`" + `).
2. An empty path (or ` + "`" + `/` + "`" + `) names the root folder itself. The root can be
   listed but never removed, renamed or moved.
3. Segments of ` + "`" + `..` + "`" + ` that would leave the root are rejected.
4. Names passed as ` + "`" + `name` + "`" + ` or ` + "`" + `filename` + "`" + ` are single segments: no slashes.
5. Name comparison follows the host file system. On Windows and macOS
   ` + "`" + `Report.txt` + "`" + ` and ` + "`" + `report.txt` + "`" + ` are the same item.

## Collision options

Tools that create an item accept an optional ` + "`" + `collision` + "`" + ` argument:

| Value       | When the name is already taken                                  |
|-------------|-----------------------------------------------------------------|
| ` + "`" + `fail` + "`" + `      | The call fails with an "already exists" error.                   |
| ` + "`" + `rename` + "`" + `    | A free name is picked by appending ` + "`" + `_1` + "`" + `, ` + "`" + `_2` + "`" + `, ... to the full name. |
| ` + "`" + `overwrite` + "`" + ` | The existing item is replaced by an empty one of the requested kind. |
| ` + "`" + `open` + "`" + `      | The existing item is returned untouched.                         |

When the argument is omitted the server default applies.

- Creating ` + "`" + `a/b/c.txt` + "`" + ` creates the missing folders ` + "`" + `a` + "`" + ` and ` + "`" + `a/b` + "`" + `. The
  collision option applies at every level, so use ` + "`" + `open` + "`" + ` to reuse folders
  that already exist.
- ` + "`" + `rename` + "`" + ` appends the counter after the extension: ` + "`" + `c.txt` + "`" + ` becomes
  ` + "`" + `c.txt_1` + "`" + `.

## Copy and move

- ` + "`" + `copy_item` + "`" + ` and ` + "`" + `move_item` + "`" + ` take a source item and a destination
  **folder**. The item keeps its name unless ` + "`" + `name` + "`" + ` is given.
- Folders are copied recursively. Children never overwrite existing items
  inside the destination, so a clash aborts the copy.
- A folder cannot be copied or moved into itself or one of its descendants.
- A move of an item onto itself is a no-op and never loses data.
- ` + "`" + `overwrite` + "`" + ` is refused with a conflict when the target is the source
  itself or a folder holding it. The same goes for ` + "`" + `open` + "`" + ` on folders.

## Writing

- ` + "`" + `write_file` + "`" + ` replaces the whole content atomically. Readers see the old or
  the new content, never a mix.
- Text is stored as UTF-8 exactly as given. No newline translation happens.
- ` + "`" + `rename_item` + "`" + ` never replaces an existing item.

## Binary files

- Use ` + "`" + `upload_file` + "`" + ` with an http(s) URL or a base64 data: URI.
- Uploads are limited to 10 MB. Loopback and cloud metadata hosts are refused.
- Without ` + "`" + `filename` + "`" + ` the name comes from the URL, or a random UUID plus an
  extension derived from the media type.
`
