// Package newick reads and writes rooted phylogenetic networks in extended
// Newick format.
//
// Plain trees use the familiar notation with optional branch lengths:
//
//	((a:1,b:1):1,(c:1,d:1):1);
//
// Reticulate nodes are written once per parent and identified by a tag after
// a '#'. Tags starting with "LGT" denote lateral gene transfer, all others
// (conventionally "H") denote hybridization:
//
//	((a,(b)#H1),(#H1,c));     // hybrid node with parents on both sides
//	((a,(b)#LGT1),(#LGT1,c)); // transfer; the occurrence with children is the tree edge
//
// Branch lengths that are omitted default to [DefaultWeight]. Square-bracket
// comments are skipped. Quoted labels use single quotes, with '' as escape.
package newick
