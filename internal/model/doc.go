// Package model defines the domain records shared across trackerscope:
// tracking events observed while a page loads, the entities that operate
// tracker networks, and the site snapshot the dashboard summarizes.
package model
