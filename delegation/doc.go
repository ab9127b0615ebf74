/*
Package delegation discovers the authoritative name servers for a domain by walking the
delegation chain top-down, bypassing any caching resolver along the way.

Starting from a bootstrap server (normally the system resolver), an NS question is asked
for each suffix of the domain from the root-most label toward the full name. Each
response either moves the walk to the delegated servers - via glue when the parent
supplies it - or leaves the current server in place when no cut exists at that label.
The NS target set of the deepest cut is then resolved to addresses and returned.

The walk deliberately never caches anything between calls. Callers in a DNS-01 flow ask
again every polling cycle precisely because delegation can change underneath them while
they wait.
*/
package delegation
