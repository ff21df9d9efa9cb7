package tilebench

// TileSpec locates one step³ cube of the (i, j, k) iteration space:
// rows StartI.., inner index StartJ.., columns StartK.. of C.
type TileSpec struct {
	StartI, StartJ, StartK int
	Step                   int
}

// MultiplyBlocked computes C = A*B by visiting the iteration space in
// step³ tiles. For every tile origin (bi, bj, bk) the inner-tile
// accumulation adds A[i,j] * B[j, bk..bk+step] into C[i, bk..bk+step]
// for each (i, j) of the tile, so each k-tile's partial sums land in C
// before the next one is visited.
//
// step must evenly divide n; the kernel panics otherwise.
func MultiplyBlocked(step, n int, a, b, c []float64, repetitions int) {
	mustOperands("Blocked", n, a, b, c)
	if err := ValidateTile(n, step); err != nil {
		panic(err)
	}
	for iter := 0; iter < repetitions; iter++ {
		clear(c[:n*n])
		for bi := 0; bi < n; bi += step {
			for bj := 0; bj < n; bj += step {
				for bk := 0; bk < n; bk += step {
					accumulateTile(n, TileSpec{StartI: bi, StartJ: bj, StartK: bk, Step: step}, a, b, c)
				}
			}
		}
	}
}

func accumulateTile(n int, t TileSpec, a, b, c []float64) {
	accumulateBlock(n, t.StartI, t.StartJ, t.StartK, t.Step, t.Step, t.Step, a, b, c)
}

// accumulateBlock adds the product of the rows×inner block of A at
// (i0, j0) and the inner×cols block of B at (j0, k0) into the rows×cols
// block of C at (i0, k0).
func accumulateBlock(n, i0, j0, k0, rows, inner, cols int, a, b, c []float64) {
	for i := i0; i < i0+rows; i++ {
		cRow := c[i*n+k0 : i*n+k0+cols]
		for j := j0; j < j0+inner; j++ {
			val := a[i*n+j]
			bRow := b[j*n+k0 : j*n+k0+cols]
			for k := range cRow {
				cRow[k] += val * bRow[k]
			}
		}
	}
}
