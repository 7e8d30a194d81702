package sorter_test

import (
	"testing"
	"time"

	"mediasort/internal/metadata"
	"mediasort/internal/sorter"
	"mediasort/internal/testutil"
)

func TestScanner_Scan(t *testing.T) {
	tree := testutil.NewMediaTree(t)
	tree.AddFile("/src/IMG_0001.JPG", testutil.JPEGWithDateTimeOriginal("2023:07:15 10:30:00"))
	tree.AddFile("/src/trip/IMG_0002.jpeg", testutil.JPEGWithDateTimeOriginal("2023:08:01 09:00:00"))
	tree.AddFile("/src/trip/IMG_0003.jpg", testutil.JPEGWithDateTimeOriginal("2023:07:30 23:59:59"))
	tree.AddFile("/src/shot.png", []byte("png"))
	tree.AddFile("/src/notes.TXT", []byte("txt"))
	tree.AddFile("/src/broken.jpg", []byte("not a jpeg"))
	tree.AddDir("/src/empty")

	fsmgr := tree.Manager()
	extractor := sorter.NewExtractor(fsmgr, metadata.NewEXIFReader(), testutil.NewStubVideoReader(), sorter.NewNopLogger())
	root, err := fsmgr.Resolve("/src")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	inv, err := sorter.NewScanner(fsmgr, extractor, sorter.NewNopLogger()).Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	t.Run("one record per regular file", func(t *testing.T) {
		if inv.Len() != 6 {
			t.Fatalf("Len() = %d, want 6", inv.Len())
		}
		for i, rec := range inv.Records {
			if rec.Index != i+1 {
				t.Errorf("Records[%d].Index = %d, want %d", i, rec.Index, i+1)
			}
		}
	})

	t.Run("extension counts are lowercased", func(t *testing.T) {
		want := map[string]int{"jpg": 3, "jpeg": 1, "png": 1, "txt": 1}
		got := inv.Counts()
		if len(got) != len(want) {
			t.Fatalf("Counts() = %v, want %v", got, want)
		}
		for ext, n := range want {
			if got[ext] != n {
				t.Errorf("Counts()[%q] = %d, want %d", ext, got[ext], n)
			}
		}
		total := 0
		for _, n := range got {
			total += n
		}
		if total != inv.Len() {
			t.Errorf("sum of counts = %d, want %d", total, inv.Len())
		}
	})

	t.Run("capture times", func(t *testing.T) {
		want := map[string]time.Time{
			"IMG_0001.JPG":  time.Date(2023, 7, 15, 10, 30, 0, 0, time.UTC),
			"IMG_0002.jpeg": time.Date(2023, 8, 1, 9, 0, 0, 0, time.UTC),
			"IMG_0003.jpg":  time.Date(2023, 7, 30, 23, 59, 59, 0, time.UTC),
		}
		for _, rec := range inv.Records {
			w, dated := want[rec.Name]
			if rec.Dated() != dated {
				t.Errorf("%s: Dated() = %v, want %v", rec.Name, rec.Dated(), dated)
				continue
			}
			if dated && !rec.CapturedAt.Equal(w) {
				t.Errorf("%s: CapturedAt = %v, want %v", rec.Name, rec.CapturedAt, w)
			}
		}
	})

	t.Run("buckets exclude the unsorted sentinel", func(t *testing.T) {
		got := inv.Buckets()
		want := []string{"2023-07", "2023-08"}
		if len(got) != len(want) {
			t.Fatalf("Buckets() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Buckets()[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("counts are a copy", func(t *testing.T) {
		c := inv.Counts()
		c["jpg"] = 100
		if inv.Counts()["jpg"] != 3 {
			t.Error("mutating Counts() result changed the inventory")
		}
	})
}

func TestScanner_WithoutExtractor(t *testing.T) {
	tree := testutil.NewMediaTree(t)
	tree.AddFile("/dst/2023-07/kuvat/20230715-103000.jpg", testutil.JPEGWithDateTimeOriginal("2023:07:15 10:30:00"))
	videos := testutil.NewStubVideoReader()
	tree.AddFile("/dst/2023-07/videot/20230715-103000.mov", []byte("mov"))

	fsmgr := tree.Manager()
	root, err := fsmgr.Resolve("/dst")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	inv, err := sorter.NewScanner(fsmgr, nil, sorter.NewNopLogger()).Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if inv.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", inv.Len())
	}
	for _, rec := range inv.Records {
		if rec.Dated() {
			t.Errorf("%s should not be dated without an extractor", rec.Name)
		}
	}
	if len(videos.Calls()) != 0 {
		t.Error("video reader should not be called")
	}
}

func TestScanner_SkipDirs(t *testing.T) {
	tree := testutil.NewMediaTree(t)
	tree.AddFile("/data/a.jpg", []byte("a"))
	tree.AddFile("/data/sorted/Unsorted/kuvat/a.jpg", []byte("a"))

	fsmgr := tree.Manager()
	root, _ := fsmgr.Resolve("/data")

	inv, err := sorter.NewScanner(fsmgr, nil, sorter.NewNopLogger()).Scan(root, "/data/sorted")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if inv.Len() != 1 {
		t.Errorf("Len() = %d, want 1", inv.Len())
	}
}

func TestScanner_EmptyTree(t *testing.T) {
	tree := testutil.NewMediaTree(t)
	tree.AddDir("/empty")
	fsmgr := tree.Manager()
	root, _ := fsmgr.Resolve("/empty")

	inv, err := sorter.NewScanner(fsmgr, nil, sorter.NewNopLogger()).Scan(root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if inv.Len() != 0 || len(inv.Counts()) != 0 || len(inv.Buckets()) != 0 {
		t.Errorf("expected an empty inventory, got %d records", inv.Len())
	}
}
