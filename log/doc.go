/*
Package log provides global output control across the whole application. Logging comes in
four levels: Silent, Major, Minor and Debug with each level more detailed than the
previous. Levels are inclusive, so, e.g., setting MinorLevel implies MajorLevel logging.

Which output belongs at which level is up to the application. The convention in propwait
is: progress and outcome messages an operator is expected to see are Major, per-step
delegation walking and polling detail is Minor and raw DNS exchange traces are Debug.

The Print and Printf style interfaces differ from the fmt versions in that a trailing
newline is supplied automatically (excess ones are trimmed) and multi-line output has the
level prefix applied to every line.

Specialist logging functions external to this package should still use log.Out() to
access the current io.Writer so that tests can capture their output.
*/
package log
