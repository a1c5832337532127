// Package plate evaluates the Navier series for the out-of-plane deflection
// of a simply supported rectangular plate under a concentrated load.
//
//	w(x,y) = 4P / (pi^4 D lx ly) * sum_m sum_n
//	         sin(m pi xi/lx) sin(n pi eta/ly) sin(m pi x/lx) sin(n pi y/ly)
//	         / ((m/lx)^2 + (n/ly)^2)^2
//
// Grids are gonum matrices. [DisplacementField] writes into a caller owned
// *mat.Dense; [NewDisplacementField] allocates the result instead. Rows of the
// grid are evaluated concurrently.
package plate
