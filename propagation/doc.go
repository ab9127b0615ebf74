/*
Package propagation repeatedly queries the authoritative name servers for one or more
TXT records until every server answers with an expected value, a deadline passes, or the
caller cancels. It exists to answer the DNS-01 question: "will the CA see my challenge
record if it asks the authority right now?".

Confirmation is deliberately strict: a record counts as propagated only when every
server in its current authoritative set agrees within a single polling cycle. Confirming
a subset proves nothing, as the issuing CA may query any of them.
*/
package propagation
