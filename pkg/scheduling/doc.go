/*
Package scheduling groups the time-ordered execution packages.

  - taskqueue: tasks ordered by the instant they become due, guarded by a
    mutex and signalled through a counting semaphore
  - barrier: parks a group of workers until all of them have arrived
  - workerpool: fixed workers draining a taskqueue, with futures for results
  - scheduler: recurring interval and cron entries built on a workerpool

A task is submitted with a time specification (ASAP, After, At or AtClock),
converted to an absolute deadline on the pool's clock, and run by the first
free worker once that deadline has passed. Tasks due at the same instant run
in no particular order.
*/
package scheduling
