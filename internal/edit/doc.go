// Package edit stages, edits and installs files through an external editor.
//
// A Session holds an ordered list of edit requests. Run drives them through
// the whole pipeline:
//   - Stage: create a transient copy next to each target, optionally seeded
//     from an original file or laid out between edit markers with commented
//     reference files appended
//   - Edit: resolve the editor ($STAGEDIT_EDITOR, $EDITOR, $VISUAL, then a
//     fallback list) and run it once over all staging files
//   - Install: trim each staging file to the content between the markers and
//     rename it over its target, skipping files left empty
//
// Close must be called on every path. It removes staging files that were not
// installed and optionally prunes empty parent directories.
package edit
